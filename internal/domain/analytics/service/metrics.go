package service

import (
	"math"
	"sort"
	"time"

	"github.com/vadim/supportbot/internal/domain/analytics/entity"
	chatentity "github.com/vadim/supportbot/internal/domain/chat/entity"
	intententity "github.com/vadim/supportbot/internal/domain/intent/entity"
)

// PopularIntentsLimit caps the popular intents table
const PopularIntentsLimit = 5

// AverageResponseTime returns the mean response time over all samples in
// seconds, rounded to two decimals. Zero when there are no samples.
func AverageResponseTime(t *Tally) float64 {
	var total time.Duration
	samples := 0
	for _, intent := range t.IntentOrder {
		total += t.ResponseTotal[intent]
		samples += t.ResponseSamples[intent]
	}
	if samples == 0 {
		return 0
	}
	return round2(total.Seconds() / float64(samples))
}

// PlatformSatisfaction returns the mean of every satisfaction sample as a
// rounded percentage. Zero when there are no samples.
func PlatformSatisfaction(t *Tally) int {
	var all []float64
	for _, intent := range t.IntentOrder {
		all = append(all, t.Satisfaction[intent]...)
	}
	pct, ok := meanPercent(all)
	if !ok {
		return 0
	}
	return pct
}

// TrendDelta is the rounded percentage change from previous to current.
// It is zero whenever either side is zero.
func TrendDelta(current, previous float64) int {
	if current == 0 || previous == 0 {
		return 0
	}
	return roundHalfUp((current - previous) / previous * 100)
}

// PopularIntents ranks intents by message count, keeping first-seen order on
// ties, and returns at most PopularIntentsLimit rows.
func PopularIntents(t *Tally, catalog []intententity.Summary) []entity.PopularIntent {
	names := make(map[string]string, len(catalog))
	for _, s := range catalog {
		names[s.Name] = s.DisplayName
	}

	rows := make([]entity.PopularIntent, 0, len(t.IntentOrder))
	for _, name := range t.IntentOrder {
		row := entity.PopularIntent{
			Name:        name,
			DisplayName: names[name],
			Count:       t.MessageCounts[name],
		}
		if row.DisplayName == "" {
			row.DisplayName = intententity.ShortName(name)
		}
		if pct, ok := meanPercent(t.Satisfaction[name]); ok {
			row.Satisfaction = &pct
		}
		if last, ok := t.LastUsed[name]; ok {
			row.LastUsed = &last
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})

	if len(rows) > PopularIntentsLimit {
		rows = rows[:PopularIntentsLimit]
	}
	return rows
}

// ResponseTimes returns the average response time per intent in seconds,
// slowest first.
func ResponseTimes(t *Tally) []entity.IntentLatency {
	out := make([]entity.IntentLatency, 0, len(t.IntentOrder))
	for _, intent := range t.IntentOrder {
		samples := t.ResponseSamples[intent]
		if samples == 0 {
			continue
		}
		out = append(out, entity.IntentLatency{
			Intent: intent,
			Time:   round2(t.ResponseTotal[intent].Seconds() / float64(samples)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time > out[j].Time
	})
	return out
}

// seedDays returns the UTC date keys of the n days ending at now, oldest first
func seedDays(now time.Time, n int) []string {
	days := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, now.UTC().AddDate(0, 0, -i).Format(entity.DateLayout))
	}
	return days
}

// MessagesPerDay buckets messages by UTC date over the n days ending at now.
// Every day is present even when empty. Messages on other dates are ignored.
func MessagesPerDay(t *Tally, now time.Time, n int) []entity.DailyCount {
	days := seedDays(now, n)
	counts := make(map[string]int, len(days))
	for _, d := range days {
		counts[d] = 0
	}

	for _, msg := range t.Messages {
		key := msg.Timestamp.UTC().Format(entity.DateLayout)
		if _, ok := counts[key]; ok {
			counts[key]++
		}
	}

	out := make([]entity.DailyCount, 0, len(days))
	for _, d := range days {
		out = append(out, entity.DailyCount{Date: d, Count: counts[d]})
	}
	return out
}

// MessageData splits the same daily buckets by sender
func MessageData(t *Tally, now time.Time, n int) []entity.DailySenderMix {
	days := seedDays(now, n)
	idx := make(map[string]int, len(days))
	out := make([]entity.DailySenderMix, len(days))
	for i, d := range days {
		idx[d] = i
		out[i].Date = d
	}

	for _, msg := range t.Messages {
		i, ok := idx[msg.Timestamp.UTC().Format(entity.DateLayout)]
		if !ok {
			continue
		}
		switch msg.Sender {
		case chatentity.SenderUser:
			out[i].UserMessages++
		case chatentity.SenderBot:
			out[i].BotMessages++
		}
	}
	return out
}

func meanPercent(samples []float64) (int, bool) {
	if len(samples) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return roundHalfUp(sum / float64(len(samples)) * 100), true
}

// roundHalfUp rounds .5 towards positive infinity, so -2.5 becomes -2
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
