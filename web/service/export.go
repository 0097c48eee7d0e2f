package service

import (
	"fmt"
	"strings"

	"copycheck/database/model"
)

// exportTimeFormat matches the timestamp shape of the original exports.
const exportTimeFormat = "2006-01-02 15:04:05"

type ExportService struct{}

// TranscriptAll renders every entry as one downloadable text document.
func (s *ExportService) TranscriptAll(entries []model.HistoryEntry) string {
	var b strings.Builder
	b.WriteString("# 履歴一覧\n\n")
	for idx, entry := range entries {
		fmt.Fprintf(&b, "## %d. %s - %s\n", idx+1, entry.ActionType, entry.CreatedAt.Format(exportTimeFormat))
		if entry.FileName != "" {
			fmt.Fprintf(&b, "ファイル名: %s\n", entry.FileName)
		}
		b.WriteString("\n### 入力内容\n")
		fmt.Fprintf(&b, "%s\n\n", entry.Content)
		b.WriteString("### 結果\n")
		fmt.Fprintf(&b, "%s\n\n", entry.Result)
		b.WriteString("---\n\n")
	}
	return b.String()
}

// TranscriptOne renders a single entry as a downloadable text document.
func (s *ExportService) TranscriptOne(entry *model.HistoryEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s - %s\n", entry.ActionType, entry.CreatedAt.Format(exportTimeFormat))
	if entry.FileName != "" {
		fmt.Fprintf(&b, "ファイル名: %s\n", entry.FileName)
	}
	b.WriteString("\n## 入力内容\n")
	fmt.Fprintf(&b, "%s\n\n", entry.Content)
	b.WriteString("## 結果\n")
	fmt.Fprintf(&b, "%s\n", entry.Result)
	return b.String()
}

// CSV renders the history as the legacy CSV shape: a fixed six-column
// header, every field after No always double-quoted, embedded quotes
// doubled. encoding/csv is deliberately not used here because it quotes
// only when required, which would change the exported bytes.
func (s *ExportService) CSV(entries []model.HistoryEntry) string {
	var b strings.Builder
	b.WriteString("No,操作タイプ,ファイル名,タイムスタンプ,入力内容,結果\n")
	for idx, entry := range entries {
		fmt.Fprintf(&b, "%d,\"%s\",\"%s\",\"%s\",\"%s\",\"%s\"\n",
			idx+1,
			csvEscape(entry.ActionType),
			csvEscape(entry.FileName),
			entry.CreatedAt.Format(exportTimeFormat),
			csvEscape(entry.Content),
			csvEscape(entry.Result),
		)
	}
	return b.String()
}

func csvEscape(field string) string {
	return strings.ReplaceAll(field, `"`, `""`)
}

// TranscriptFileName builds the download name for a single entry, replacing
// the characters the original replaced.
func (s *ExportService) TranscriptFileName(entry *model.HistoryEntry) string {
	stamp := entry.CreatedAt.Format(exportTimeFormat)
	stamp = strings.ReplaceAll(stamp, ":", "-")
	stamp = strings.ReplaceAll(stamp, " ", "_")
	return fmt.Sprintf("%s_%s.txt", entry.ActionType, stamp)
}
