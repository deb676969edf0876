package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/supportbot/internal/domain/analytics/entity"
	chatentity "github.com/vadim/supportbot/internal/domain/chat/entity"
	intententity "github.com/vadim/supportbot/internal/domain/intent/entity"
)

func TestTrendDelta(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     int
	}{
		{"growth", 150, 100, 50},
		{"decline", 50, 100, -50},
		{"unchanged", 10, 10, 0},
		{"previous zero", 42, 0, 0},
		{"current zero", 0, 42, 0},
		{"both zero", 0, 0, 0},
		{"rounds half up", 9, 8, 13},
		{"negative half rounds toward positive", 7, 8, -12},
		{"fractional seconds", 2.5, 2, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrendDelta(tt.current, tt.previous))
		})
	}
}

func TestTrendDelta_ZeroGuardIsSymmetric(t *testing.T) {
	for _, v := range []float64{-3, 0.01, 1, 99, 1e6} {
		assert.Zero(t, TrendDelta(v, 0), "trendDelta(%v, 0)", v)
		assert.Zero(t, TrendDelta(0, v), "trendDelta(0, %v)", v)
	}
}

func TestPlatformSatisfaction_NoSamples(t *testing.T) {
	t0 := testNow.Add(-time.Hour)
	tally := Classify([]chatentity.Transcript{
		transcript("s1", userMsg(t0, "a"), botMsg(t0.Add(time.Second))),
	}, dayWindow())

	assert.Zero(t, PlatformSatisfaction(tally))
	assert.Zero(t, PlatformSatisfaction(newTally()))
}

func TestPlatformSatisfaction_AveragesAcrossIntents(t *testing.T) {
	t0 := testNow.Add(-time.Hour)
	a := userMsg(t0, "a")
	a.SatisfactionScore = score(1)
	b1 := userMsg(t0, "b")
	b1.SatisfactionScore = score(0.5)
	b2 := userMsg(t0, "b")
	b2.SatisfactionScore = score(0.25)

	tally := Classify([]chatentity.Transcript{transcript("s1", a, b1, b2)}, dayWindow())

	// (1 + 0.5 + 0.25) / 3 = 0.5833
	assert.Equal(t, 58, PlatformSatisfaction(tally))
}

func TestAverageResponseTime(t *testing.T) {
	t0 := testNow.Add(-time.Hour)
	tally := Classify([]chatentity.Transcript{
		transcript("s1",
			userMsg(t0, "a"), botMsg(t0.Add(1500*time.Millisecond)),
			userMsg(t0.Add(time.Minute), "b"), botMsg(t0.Add(time.Minute+2*time.Second)),
			userMsg(t0.Add(2*time.Minute), "b"), botMsg(t0.Add(2*time.Minute+3333*time.Millisecond)),
		),
	}, dayWindow())

	// (1.5 + 2 + 3.333) / 3 = 2.2777
	assert.Equal(t, 2.28, AverageResponseTime(tally))
	assert.Zero(t, AverageResponseTime(newTally()))
}

func TestResponseTimes_SlowestFirst(t *testing.T) {
	t0 := testNow.Add(-time.Hour)
	tally := Classify([]chatentity.Transcript{
		transcript("s1",
			userMsg(t0, "fast"), botMsg(t0.Add(500*time.Millisecond)),
			userMsg(t0.Add(time.Minute), "slow"), botMsg(t0.Add(time.Minute+4*time.Second)),
			userMsg(t0.Add(2*time.Minute), "slow"), botMsg(t0.Add(2*time.Minute+2*time.Second)),
			userMsg(t0.Add(3*time.Minute), "unanswered"),
		),
	}, dayWindow())

	got := ResponseTimes(tally)

	require.Len(t, got, 2)
	assert.Equal(t, entity.IntentLatency{Intent: intentPrefix + "slow", Time: 3}, got[0])
	assert.Equal(t, entity.IntentLatency{Intent: intentPrefix + "fast", Time: 0.5}, got[1])
	assert.NotNil(t, ResponseTimes(newTally()), "empty result encodes as an array")
}

func TestPopularIntents_OrderedByCount(t *testing.T) {
	t0 := testNow.Add(-time.Hour)
	var msgs []chatentity.Message
	for i := 0; i < 3; i++ {
		msgs = append(msgs, userMsg(t0.Add(time.Duration(i)*time.Second), "X"))
	}
	for i := 0; i < 7; i++ {
		msgs = append(msgs, userMsg(t0.Add(time.Duration(10+i)*time.Second), "Y"))
	}

	got := PopularIntents(Classify([]chatentity.Transcript{transcript("s1", msgs...)}, dayWindow()), nil)

	require.Len(t, got, 2, "fewer than five intents are returned as is")
	assert.Equal(t, intentPrefix+"Y", got[0].Name)
	assert.Equal(t, 7, got[0].Count)
	assert.Equal(t, intentPrefix+"X", got[1].Name)
	assert.Equal(t, 3, got[1].Count)
}

func TestPopularIntents_TopFiveStableOnTies(t *testing.T) {
	t0 := testNow.Add(-time.Hour)
	var msgs []chatentity.Message
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		msgs = append(msgs, userMsg(t0.Add(time.Duration(i)*time.Second), name))
	}
	msgs = append(msgs, userMsg(t0.Add(time.Minute), "f"))

	got := PopularIntents(Classify([]chatentity.Transcript{transcript("s1", msgs...)}, dayWindow()), nil)

	require.Len(t, got, PopularIntentsLimit)
	names := make([]string, 0, len(got))
	for _, row := range got {
		names = append(names, intententity.ShortName(row.Name))
	}
	assert.Equal(t, []string{"f", "a", "b", "c", "d"}, names)
}

func TestPopularIntents_DisplayNameAndSatisfaction(t *testing.T) {
	t0 := testNow.Add(-time.Hour)
	scored := userMsg(t0, "known")
	scored.SatisfactionScore = score(0.9)
	later := userMsg(t0.Add(time.Hour/2), "known")

	tally := Classify([]chatentity.Transcript{
		transcript("s1", scored, later, userMsg(t0, "unknown")),
	}, dayWindow())

	catalog := []intententity.Summary{
		{Name: intentPrefix + "known", DisplayName: "Known Intent"},
	}
	got := PopularIntents(tally, catalog)

	require.Len(t, got, 2)
	assert.Equal(t, "Known Intent", got[0].DisplayName)
	require.NotNil(t, got[0].Satisfaction)
	assert.Equal(t, 90, *got[0].Satisfaction)
	require.NotNil(t, got[0].LastUsed)
	assert.Equal(t, t0.Add(time.Hour/2), *got[0].LastUsed)

	assert.Equal(t, "unknown", got[1].DisplayName, "falls back to the trailing name segment")
	assert.Nil(t, got[1].Satisfaction)
}

func TestMessagesPerDay_SeedsEveryDay(t *testing.T) {
	for _, r := range []entity.Range{entity.RangeDay, entity.RangeWeek, entity.RangeMonth} {
		t.Run(string(r), func(t *testing.T) {
			got := MessagesPerDay(newTally(), testNow, r.Days())

			require.Len(t, got, r.Days())
			for i := 1; i < len(got); i++ {
				assert.Less(t, got[i-1].Date, got[i].Date, "dates ascend")
			}
			assert.Equal(t, "2026-03-15", got[len(got)-1].Date)
			for _, d := range got {
				assert.Zero(t, d.Count)
			}
		})
	}
}

func TestMessagesPerDay_Counts(t *testing.T) {
	window := entity.Resolve(entity.RangeWeek, testNow).Current
	tally := Classify([]chatentity.Transcript{
		transcript("s1",
			userMsg(testNow.Add(-time.Hour), "a"),
			botMsg(testNow.Add(-time.Hour+time.Second)),
			userMsg(testNow.Add(-50*time.Hour), ""),
		),
		// 2026-03-08 13:00 is inside the 7 day window but its date is not seeded
		transcript("s2", userMsg(testNow.Add(-7*24*time.Hour+time.Hour), "b")),
	}, window)

	perDay := MessagesPerDay(tally, testNow, 7)
	mix := MessageData(tally, testNow, 7)

	require.Len(t, perDay, 7)
	require.Len(t, mix, 7)
	assert.Equal(t, "2026-03-09", perDay[0].Date)

	counts := map[string]int{}
	for _, d := range perDay {
		counts[d.Date] = d.Count
	}
	assert.Equal(t, 2, counts["2026-03-15"])
	assert.Equal(t, 1, counts["2026-03-13"])
	assert.NotContains(t, counts, "2026-03-08")

	last := mix[len(mix)-1]
	assert.Equal(t, entity.DailySenderMix{Date: "2026-03-15", UserMessages: 1, BotMessages: 1}, last)
	assert.Equal(t, 4, tally.TotalMessages)
}

func ExampleTrendDelta() {
	fmt.Println(TrendDelta(120, 100), TrendDelta(0, 100))
	// Output: 20 0
}
