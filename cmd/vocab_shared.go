package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	adapterrepo "github.com/eslsoft/myenglish/internal/adapter/repository"
	"github.com/eslsoft/myenglish/internal/infrastructure/config"
	"github.com/eslsoft/myenglish/internal/infrastructure/kvstore"
	"github.com/eslsoft/myenglish/internal/infrastructure/server"
	"github.com/eslsoft/myenglish/internal/repository"
)

// openEntryStore wires the configured KV backend up to the collection store
// for short-lived vocabulary commands.
func openEntryStore() (repository.EntryStore, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := server.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	kv, cleanup, err := kvstore.NewStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("打开存储失败: %w", err)
	}

	return adapterrepo.NewEntryStore(kv, logger), cleanup, nil
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}
