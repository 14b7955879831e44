package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "방금 전"},
		{5 * time.Minute, "5분 전"},
		{3 * time.Hour, "3시간 전"},
		{2 * 24 * time.Hour, "2일 전"},
		{15 * 24 * time.Hour, "2주 전"},
		{65 * 24 * time.Hour, "2개월 전"},
		{800 * 24 * time.Hour, "2년 전"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeAgo(now.Add(-tt.ago), now), "ago=%s", tt.ago)
	}
}

func TestFormatting(t *testing.T) {
	ts := time.Date(2026, 1, 5, 9, 7, 0, 0, time.UTC)
	assert.Equal(t, "2026.01.05", FormatDate(ts))
	assert.Equal(t, "2026.01.05 09:07", FormatDateTime(ts))
	assert.Equal(t, "2022.03", FormatMonth("2022-03"))
	assert.Equal(t, "2024.01 - 현재", Experience{StartDate: "2024-01"}.Period())
}

func TestDefaultLookups(t *testing.T) {
	c := Default()

	p, ok := c.Project("2")
	assert.True(t, ok)
	assert.Equal(t, "E-Commerce 플랫폼", p.Title)

	_, ok = c.Project("99")
	assert.False(t, ok)

	assert.Len(t, c.FeaturedProjects(), 3)

	qs := c.Questions()
	assert.Equal(t, "4", qs[0].ID, "newest question first")
	assert.Equal(t, "1", qs[len(qs)-1].ID)

	q, ok := c.Question("3")
	assert.True(t, ok)
	assert.Len(t, q.Answers, 2)
}
