package telegram

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/pkg/utils"
)

const maxListedErrors = 5

// FormatBatchReport formats the outcome of a sentiment backlog run.
func FormatBatchReport(report *dto.BatchReport) string {
	var builder strings.Builder

	title := "✅ *감정분석 배치 완료*"
	switch {
	case report.Cancelled:
		title = "⏹ *감정분석 배치 중단*"
	case report.Failed > 0:
		title = "⚠️ *감정분석 배치 완료 (일부 실패)*"
	}

	builder.WriteString(title + "\n")
	builder.WriteString(fmt.Sprintf("%s\n", utils.PrettyDate(report.FinishedAt)))
	builder.WriteString(fmt.Sprintf("🆔 Run: `%s`\n\n", report.RunID))
	builder.WriteString(fmt.Sprintf("📥 요청: %d\n", report.Requested))
	builder.WriteString(fmt.Sprintf("🟢 성공: %d\n", report.Success))
	builder.WriteString(fmt.Sprintf("⏭ 건너뜀: %d\n", report.Skipped))
	builder.WriteString(fmt.Sprintf("🟡 대체 분석: %d\n", report.Degraded))
	builder.WriteString(fmt.Sprintf("🔴 실패: %d\n", report.Failed))
	builder.WriteString(fmt.Sprintf("⏱ 소요: %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Second)))
	writeArticleErrors(&builder, report.Errors)

	return builder.String()
}

// FormatClassificationReport formats the outcome of a classification backlog run.
func FormatClassificationReport(report *dto.ClassificationReport, finishedAt time.Time) string {
	var builder strings.Builder

	builder.WriteString("🗂 *뉴스 분류 배치 완료*\n")
	builder.WriteString(fmt.Sprintf("%s\n\n", utils.PrettyDate(finishedAt)))
	builder.WriteString(fmt.Sprintf("📥 요청: %d\n", report.Requested))
	builder.WriteString(fmt.Sprintf("🟢 분류: %d\n", report.Classified))
	builder.WriteString(fmt.Sprintf("🔴 실패: %d\n", report.Failed))

	if len(report.ByCategory) > 0 {
		categories := make([]string, 0, len(report.ByCategory))
		for category := range report.ByCategory {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		builder.WriteString("\n📊 카테고리\n")
		for _, category := range categories {
			builder.WriteString(fmt.Sprintf("- %s: %d\n", category, report.ByCategory[category]))
		}
	}
	writeArticleErrors(&builder, report.Errors)

	return builder.String()
}

func writeArticleErrors(builder *strings.Builder, errs []dto.ArticleError) {
	if len(errs) == 0 {
		return
	}
	builder.WriteString("\n❌ 오류\n")
	for i, e := range errs {
		if i == maxListedErrors {
			builder.WriteString(fmt.Sprintf("... 외 %d건\n", len(errs)-maxListedErrors))
			break
		}
		builder.WriteString(fmt.Sprintf("- #%d: %s\n", e.NewsID, utils.Truncate(e.Error, 120)))
	}
}

func FormatErrorAlertMessage(time time.Time, errType string, errMsg string, data string) string {
	return fmt.Sprintf(`📛 [ERROR ALERT]
%s
🔧 %s
⚠️ %s

📄 Data: %s
`, utils.PrettyDate(time), errType, errMsg, data)
}
