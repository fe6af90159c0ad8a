package heuristic_test

import (
	"testing"

	"github.com/campushub/modgate/pkg/moderation"
	"github.com/campushub/modgate/pkg/moderation/heuristic"
	"github.com/stretchr/testify/assert"
)

func TestScorer_CleanLostFound(t *testing.T) {
	s := heuristic.NewScorer(heuristic.DefaultConfig())

	v := s.Score("lost-found", "", "Found a blue backpack near the library, contact front desk.")

	assert.Equal(t, 100, v.Score)
	assert.True(t, v.IsRelevant)
	assert.True(t, v.Authentic)
	assert.Empty(t, v.Flags)
	assert.Equal(t, moderation.TopicLostFound, v.Topic)
	assert.Equal(t, "Content appears authentic and appropriate", v.Reason)
}

func TestScorer_Penalties(t *testing.T) {
	s := heuristic.NewScorer(heuristic.Config{})

	tests := []struct {
		name          string
		topic         string
		title         string
		content       string
		wantScore     int
		wantFlags     []string
		wantAuthentic bool
		wantRelevant  bool
	}{
		{
			name:          "three distinct urls and promo",
			topic:         "generic",
			content:       "Click here http://a.co http://b.co http://c.co to win free cash!!!",
			wantScore:     25,
			wantFlags:     []string{moderation.FlagSpam},
			wantAuthentic: false,
			wantRelevant:  true,
		},
		{
			name:          "repeated same url counts once",
			topic:         "event",
			content:       "Workshop details at http://club.edu and http://club.edu/ again http://CLUB.edu",
			wantScore:     100,
			wantFlags:     nil,
			wantAuthentic: true,
			wantRelevant:  true,
		},
		{
			name:          "promotional phrase alone is a spam veto",
			topic:         "event",
			content:       "Join the workshop and use my promo code STUDENT50 for the conference",
			wantScore:     70,
			wantFlags:     []string{moderation.FlagSpam},
			wantAuthentic: false,
			wantRelevant:  true,
		},
		{
			name:          "email in body",
			topic:         "lost-found",
			content:       "Lost my wallet near the gym, write to jane.doe@campus.edu",
			wantScore:     85,
			wantFlags:     []string{moderation.FlagPersonalInfo},
			wantAuthentic: true,
			wantRelevant:  true,
		},
		{
			name:          "at sign before a time is not an email",
			topic:         "event",
			content:       "Robotics workshop @ 5pm. Bring your laptop to the venue.",
			wantScore:     100,
			wantFlags:     nil,
			wantAuthentic: true,
			wantRelevant:  true,
		},
		{
			name:          "phone number in body",
			topic:         "lost-found",
			content:       "Found keys by the fountain, call (555) 123-4567",
			wantScore:     85,
			wantFlags:     []string{moderation.FlagPersonalInfo},
			wantAuthentic: true,
			wantRelevant:  true,
		},
		{
			name:          "off topic is advisory",
			topic:         "academic",
			content:       "Selling my old bicycle, great condition and barely ridden",
			wantScore:     90,
			wantFlags:     []string{moderation.FlagOffTopic},
			wantAuthentic: true,
			wantRelevant:  false,
		},
		{
			name:          "short content alone is not disqualifying",
			topic:         "lost-found",
			title:         "Lost ID",
			content:       "lost id",
			wantScore:     90,
			wantFlags:     []string{moderation.FlagShortContent},
			wantAuthentic: true,
			wantRelevant:  true,
		},
		{
			name:          "shouting",
			topic:         "event",
			content:       "HUGE PARTY TONIGHT AT THE MAIN HALL EVERYONE COME",
			wantScore:     90,
			wantFlags:     []string{moderation.FlagExcessiveCaps},
			wantAuthentic: true,
			wantRelevant:  true,
		},
		{
			name:          "everything at once clamps to zero",
			topic:         "academic",
			content:       "CLICK HERE HTTP://A.CO HTTP://B.CO HTTP://C.CO CALL 555-123-4567",
			wantScore:     0,
			wantFlags:     []string{moderation.FlagSpam, moderation.FlagPersonalInfo, moderation.FlagExcessiveCaps, moderation.FlagOffTopic},
			wantAuthentic: false,
			wantRelevant:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := s.Score(tt.topic, tt.title, tt.content)
			assert.Equal(t, tt.wantScore, v.Score)
			assert.ElementsMatch(t, tt.wantFlags, v.Flags.Sorted())
			assert.Equal(t, tt.wantAuthentic, v.Authentic)
			assert.Equal(t, tt.wantRelevant, v.IsRelevant)
			assert.GreaterOrEqual(t, v.Score, 0)
			assert.LessOrEqual(t, v.Score, 100)
		})
	}
}

func TestScorer_MinScoreThreshold(t *testing.T) {
	s := heuristic.NewScorer(heuristic.Config{MinScore: 95})
	v := s.Score("academic", "", "Selling my old bicycle, great condition and barely ridden")
	assert.Equal(t, 90, v.Score)
	assert.False(t, v.Authentic)
	assert.Equal(t, "Content did not pass quality checks", v.Reason)
}

func TestScorer_GenericTopicAlwaysRelevant(t *testing.T) {
	s := heuristic.NewScorer(heuristic.DefaultConfig())
	v := s.Score("whatever", "", "Anyone up for a game of chess this weekend?")
	assert.True(t, v.IsRelevant)
	assert.Equal(t, moderation.TopicGeneric, v.Topic)
}

func TestScorer_Deterministic(t *testing.T) {
	s := heuristic.NewScorer(heuristic.DefaultConfig())
	a := s.Score("event", "Talk", "Guest talk on robotics tomorrow at 5pm, room 201")
	b := s.Score("event", "Talk", "Guest talk on robotics tomorrow at 5pm, room 201")
	assert.Equal(t, a, b)
}
