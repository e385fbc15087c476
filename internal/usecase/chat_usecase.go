package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/eslsoft/myenglish/internal/adapter/completion"
	"github.com/eslsoft/myenglish/internal/entity"
	"github.com/eslsoft/myenglish/internal/repository"
)

// practiceWordLimit bounds how many collection words feed the chat prompt.
const practiceWordLimit = 30

var chatModeInstructions = map[entity.ChatMode]string{
	entity.ChatModeFree:    "进行自由轻松的英语对话，话题不限。",
	entity.ChatModeVocab:   "每次回复自然地用到用户生词本中1-2个词汇，引导用户在对话中练习这些词。",
	entity.ChatModeScene:   "扮演真实场景角色（咖啡店店员、公司同事、面试官等），用情境对话帮用户练习实际场景英语，每次回复先说明当前场景。",
	entity.ChatModeCorrect: "用户提交中文或有语法错误的英文，分析问题、给出纠正后的地道表达并解释原因，语气友好像语言老师。",
}

// ChatUsecase produces practice conversation replies grounded in the user's
// current vocabulary.
type ChatUsecase interface {
	Reply(ctx context.Context, mode entity.ChatMode, turns []entity.ChatTurn) (*entity.ChatReply, error)
}

// NewChatUsecase wires the entry store and completion client with default behaviour.
func NewChatUsecase(store repository.EntryStore, client completion.Client, dispatcher *completion.Dispatcher) ChatUsecase {
	return &chatUsecase{store: store, client: client, dispatcher: dispatcher}
}

type chatUsecase struct {
	store      repository.EntryStore
	client     completion.Client
	dispatcher *completion.Dispatcher
}

func (u *chatUsecase) Reply(ctx context.Context, mode entity.ChatMode, turns []entity.ChatTurn) (*entity.ChatReply, error) {
	mode = entity.ParseChatMode(string(mode))
	practice := practiceWords(u.store.Snapshot())

	callCtx, release := u.dispatcher.Acquire(ctx, completion.KindChat)
	defer release()

	messages := lo.Map(turns, func(t entity.ChatTurn, _ int) completion.Message {
		return completion.Message{Role: t.Role, Content: t.Content}
	})
	reply, err := u.client.Complete(callCtx, completion.Request{
		System:   buildChatSystem(practice, mode),
		Messages: messages,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("chat reply: %w", err)
	}

	return &entity.ChatReply{
		Content:   reply,
		UsedWords: usedPracticeWords(practice, latestUserTurn(turns)),
	}, nil
}

// practiceWords picks the entries worth exercising: everything not yet mastered.
func practiceWords(entries []entity.VocabEntry) []entity.VocabEntry {
	picked := lo.Filter(entries, func(e entity.VocabEntry, _ int) bool {
		return e.Level == entity.LevelNew || e.Level == entity.LevelLearning
	})
	if len(picked) > practiceWordLimit {
		picked = picked[:practiceWordLimit]
	}
	return picked
}

func buildChatSystem(practice []entity.VocabEntry, mode entity.ChatMode) string {
	wordList := "用户暂无生词本词汇。"
	if len(practice) > 0 {
		pairs := lo.Map(practice, func(e entity.VocabEntry, _ int) string {
			return fmt.Sprintf("%s（%s）", e.Word, e.Translation)
		})
		wordList = "用户生词本练习词汇：" + strings.Join(pairs, "、")
	}

	return fmt.Sprintf(`你是 MyEnglish 的 AI 英语学习助手。%s

当前模式：%s

核心规则：
1. 支持中英文混合对话，根据用户输入语言灵活切换
2. 回复中用到生词本词汇时，用**双星号**包裹（如 **ephemeral**），方便前端高亮显示
3. 语气自然友好，像聊天而非课堂
4. 回复长度适中，不要过长
5. 如果用户在输入中正确使用了生词本词汇，在回复末尾加 🏆 并指出`, wordList, chatModeInstructions[mode])
}

func latestUserTurn(turns []entity.ChatTurn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "user" {
			return turns[i].Content
		}
	}
	return ""
}

func usedPracticeWords(practice []entity.VocabEntry, input string) []string {
	if input == "" {
		return nil
	}
	folded := strings.ToLower(input)
	var used []string
	for _, e := range practice {
		if strings.Contains(folded, entity.WordKey(e.Word)) {
			used = append(used, e.Word)
		}
	}
	return used
}
