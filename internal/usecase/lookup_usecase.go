package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/myenglish/internal/adapter/completion"
	"github.com/eslsoft/myenglish/internal/entity"
	"github.com/eslsoft/myenglish/internal/repository"
)

const dictSystemPrompt = `你是专业英汉词典。只返回JSON，禁止任何其他文字或markdown代码块。

JSON结构：
{
  "word": "原始输入",
  "isEnglish": true或false,
  "isWord": true（单词/短语）或false（句子）,
  "translation": "主要翻译",
  "phonetic": "国际音标，仅英文单词填写，否则空字符串",
  "pos": "词性如adj./n./v.，句子为空字符串",
  "definitions": [{"pos":"词性","meaning":"释义"}],
  "examples": [{"en":"英文例句","zh":"中文翻译"}]
}

规则：单词给完整词典信息(1-2条definitions和examples)；句子isWord=false，translation给完整翻译；中文给英文翻译。`

// autoCollectDelay lets the user see the lookup result before the word
// silently joins the collection.
const autoCollectDelay = 500 * time.Millisecond

// fallbackTranslationLimit bounds the raw reply excerpt when the reply is not
// valid JSON.
const fallbackTranslationLimit = 200

var englishPattern = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)

// LookupUsecase runs dictionary translations against the completion service,
// keeps the lookup history and auto-collects looked-up English words.
type LookupUsecase interface {
	Translate(ctx context.Context, text string) (*entity.LookupResult, error)
	History(ctx context.Context) ([]entity.HistoryRecord, error)
}

// NewLookupUsecase wires the completion client and history log with default behaviour.
func NewLookupUsecase(
	client completion.Client,
	dispatcher *completion.Dispatcher,
	history repository.HistoryLog,
	vocab VocabUsecase,
	logger *logrus.Logger,
) LookupUsecase {
	return &lookupUsecase{
		client:     client,
		dispatcher: dispatcher,
		history:    history,
		vocab:      vocab,
		logger:     logger,
		clock:      time.Now,
		schedule:   func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

type lookupUsecase struct {
	client     completion.Client
	dispatcher *completion.Dispatcher
	history    repository.HistoryLog
	vocab      VocabUsecase
	logger     *logrus.Logger
	clock      func() time.Time
	schedule   func(d time.Duration, fn func())
}

func (u *lookupUsecase) Translate(ctx context.Context, text string) (*entity.LookupResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, entity.ErrEmptyLookupQuery
	}

	callCtx, release := u.dispatcher.Acquire(ctx, completion.KindTranslate)
	defer release()

	raw, err := u.client.Complete(callCtx, completion.Request{
		System:   dictSystemPrompt,
		Messages: []completion.Message{{Role: "user", Content: "翻译：" + trimmed}},
	})
	if err != nil {
		// Cancellation is a superseded request, not a failure: no history
		// write, no wrapping.
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("translate %q: %w", trimmed, err)
	}

	result := normalizeLookup(trimmed, raw)

	word := result.Word
	if word == "" {
		word = trimmed
	}
	u.history.Append(ctx, entity.HistoryRecord{
		Word:        word,
		Translation: result.Translation,
		Time:        u.clock(),
	})

	if result.IsWord && result.IsEnglish {
		u.scheduleAutoCollect(result)
	}
	return result, nil
}

func (u *lookupUsecase) History(ctx context.Context) ([]entity.HistoryRecord, error) {
	return u.history.Records(), nil
}

// scheduleAutoCollect adds the looked-up word to the collection after a short
// delay. Duplicates are dropped silently.
func (u *lookupUsecase) scheduleAutoCollect(result *entity.LookupResult) {
	draft := entity.EntryDraft{
		Word:        result.Word,
		Phonetic:    result.Phonetic,
		Pos:         result.Pos,
		Translation: result.Translation,
		Definitions: result.Definitions,
		Examples:    result.Examples,
	}
	u.schedule(autoCollectDelay, func() {
		_, err := u.vocab.AddSingle(context.Background(), draft, entity.SourceAuto)
		if err != nil && !errors.Is(err, entity.ErrDuplicateEntry) {
			u.logger.WithError(err).WithField("word", draft.Word).Warn("auto-collect failed")
		}
	})
}

// normalizeLookup turns a model reply into a LookupResult. Code fences are
// stripped before parsing; an unparseable reply degrades to a plain
// translation built from the raw text.
func normalizeLookup(query, raw string) *entity.LookupResult {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var result entity.LookupResult
	if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
		if result.Definitions == nil {
			result.Definitions = []entity.Definition{}
		}
		if result.Examples == nil {
			result.Examples = []entity.Example{}
		}
		return &result
	}

	translation := raw
	if runes := []rune(raw); len(runes) > fallbackTranslationLimit {
		translation = string(runes[:fallbackTranslationLimit])
	}
	return &entity.LookupResult{
		Word:        query,
		IsEnglish:   englishPattern.MatchString(query),
		IsWord:      false,
		Translation: translation,
		Definitions: []entity.Definition{},
		Examples:    []entity.Example{},
	}
}
