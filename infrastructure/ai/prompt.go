package ai

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"nextup-api/domain/ports"
)

const (
	rankingTemplateName = "ranking.tmpl"
	deadlineLayout      = "2006-01-02"
	quickWinMinutes     = 15
)

//go:embed templates/*.tmpl
var templates embed.FS

var rankingTemplate = template.Must(template.ParseFS(templates, "templates/"+rankingTemplateName))

type promptTask struct {
	ID       string
	Title    string
	Deadline string
	Priority string
}

type promptData struct {
	Today           string
	QuickWinMinutes int
	Tasks           []promptTask
}

// BuildRankingPrompt render prompt สำหรับ ranking request
func BuildRankingPrompt(req *ports.RankingRequest, now time.Time) (string, error) {
	data := promptData{
		Today:           now.Format(deadlineLayout),
		QuickWinMinutes: quickWinMinutes,
		Tasks:           make([]promptTask, len(req.Tasks)),
	}
	for i, t := range req.Tasks {
		pt := promptTask{
			ID:    t.ID.String(),
			Title: oneLine(t.Title),
		}
		if t.Deadline != nil {
			pt.Deadline = t.Deadline.Format(deadlineLayout)
		}
		if t.Priority != nil {
			pt.Priority = string(*t.Priority)
		}
		data.Tasks[i] = pt
	}

	var buf bytes.Buffer
	if err := rankingTemplate.ExecuteTemplate(&buf, rankingTemplateName, data); err != nil {
		return "", fmt.Errorf("render ranking prompt: %w", err)
	}
	// proto ไม่รับ invalid UTF-8
	return strings.ToValidUTF8(buf.String(), ""), nil
}

// title หลายบรรทัดทำให้ list ใน prompt เพี้ยน
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
