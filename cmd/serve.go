/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eslsoft/myenglish/internal/adapter/completion"
	"github.com/eslsoft/myenglish/internal/adapter/httpapi"
	adapterrepo "github.com/eslsoft/myenglish/internal/adapter/repository"
	"github.com/eslsoft/myenglish/internal/infrastructure/config"
	"github.com/eslsoft/myenglish/internal/infrastructure/kvstore"
	"github.com/eslsoft/myenglish/internal/infrastructure/server"
	"github.com/eslsoft/myenglish/internal/usecase"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, err := server.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}

		kv, cleanup, err := kvstore.NewStore(cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer cleanup()

		entries := adapterrepo.NewEntryStore(kv, logger)
		history := adapterrepo.NewHistoryLog(kv, logger)

		client := completion.NewClient(cfg)
		dispatcher := completion.NewDispatcher()

		vocab := usecase.NewVocabUsecase(entries)
		review := usecase.NewReviewUsecase(entries)
		lookup := usecase.NewLookupUsecase(client, dispatcher, history, vocab, logger)
		chat := usecase.NewChatUsecase(entries, client, dispatcher)

		router := httpapi.NewRouter(vocab, review, lookup, chat, logger)
		srv := server.NewServer(cfg, logger, router)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		// Graceful shutdown
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			logger.Infof("received signal: %s, shutting down", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
			return nil
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
