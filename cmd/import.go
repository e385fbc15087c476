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
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/myenglish/internal/entity"
	"github.com/eslsoft/myenglish/internal/usecase"
)

const (
	importInputKey = "vocab.import.input"
	importGzipKey  = "vocab.import.gzip"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "从文本文件批量导入生词",
	Long:  "每行一个词条，格式为「单词,释义」，支持中英文逗号与制表符分隔。",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		inputPath := viper.GetString(importInputKey)
		gzipEnabled := viper.GetBool(importGzipKey)

		if inputPath == "" {
			return fmt.Errorf("请通过 --input 指定词表文件或使用 - 表示标准输入")
		}
		if !gzipEnabled && inputPath != "-" && strings.HasSuffix(strings.ToLower(inputPath), ".gz") {
			gzipEnabled = true
		}

		var (
			reader  = cmd.InOrStdin()
			closers []func() error
		)

		if inputPath != "-" {
			file, openErr := os.Open(filepath.Clean(inputPath))
			if openErr != nil {
				return fmt.Errorf("打开词表文件失败: %w", openErr)
			}
			reader = file
			closers = append(closers, file.Close)
		}

		if gzipEnabled {
			gzr, gzErr := gzip.NewReader(reader)
			if gzErr != nil {
				return fmt.Errorf("创建 gzip 读取器失败: %w", gzErr)
			}
			reader = gzr
			closers = append([]func() error{gzr.Close}, closers...)
		}

		defer func() {
			for _, closer := range closers {
				if cerr := closer(); cerr != nil && err == nil {
					err = cerr
				}
			}
		}()

		raw, err := io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("读取词表失败: %w", err)
		}

		store, cleanup, err := openEntryStore()
		if err != nil {
			return err
		}
		defer cleanup()

		vocab := usecase.NewVocabUsecase(store)

		candidates, err := vocab.ParseImportBatch(ctx, string(raw))
		if err != nil {
			return fmt.Errorf("解析词表失败: %w", err)
		}
		if len(candidates) == 0 {
			cmd.Println("导入完成: 词表为空")
			return nil
		}

		duplicates := lo.CountBy(candidates, func(c entity.ImportCandidate) bool { return c.Duplicate })

		inserted, err := vocab.ConfirmImportBatch(ctx, candidates)
		if err != nil {
			return fmt.Errorf("写入生词本失败: %w", err)
		}

		if err := store.Flush(ctx); err != nil {
			return fmt.Errorf("保存生词本失败: %w", err)
		}

		cmd.Printf("导入完成: 新增 %d 条，跳过重复 %d 条\n", inserted, duplicates)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("input", "i", "", "词表文件路径，使用 - 表示标准输入")
	importCmd.Flags().Bool("gzip", false, "输入为 gzip 压缩格式")

	bindImportConfig()
}

func bindImportConfig() {
	bindFlagToViper(importInputKey, importCmd.Flags().Lookup("input"))
	bindFlagToViper(importGzipKey, importCmd.Flags().Lookup("gzip"))
}
