package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/export"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/utils"
)

var (
	workDir   = flag.String("work", "./work", "比较报告所在的工作目录")
	outputDir = flag.String("output", "./output", "汇总文件输出目录")
	format    = flag.String("format", "csv", "输出格式 (csv, md, both)")
	sortKey   = flag.String("sort", "generated_at", "排序键 (slug, generated_at, duration)，前缀-为降序")
	limit     = flag.Int("limit", 0, "只保留排序后的前N行，0表示全部")
	logLevel  = flag.String("log-level", "INFO", "日志级别")
)

func main() {
	flag.Parse()
	utils.InitLogger(*logLevel, "")

	agg := export.NewAggregator(*workDir)
	rows, err := agg.Collect(*sortKey, *limit)
	if err != nil {
		logrus.Fatalf("汇总报告失败: %v", err)
	}

	if len(rows) == 0 {
		color.Yellow("在 %s 下没有找到可用的比较报告", *workDir)
		os.Exit(0)
	}

	fmt.Printf("汇总 %d 次比较运行\n", len(rows))

	if *format == "csv" || *format == "both" {
		path, err := export.NewCSVExporter(*outputDir).Export(rows)
		if err != nil {
			logrus.Fatalf("导出CSV失败: %v", err)
		}
		color.Green("CSV: %s", path)
	}

	if *format == "md" || *format == "both" {
		path, err := export.NewMarkdownExporter(*outputDir).Export(rows)
		if err != nil {
			logrus.Fatalf("导出Markdown失败: %v", err)
		}
		color.Green("Markdown: %s", path)
	}
}
