package league

import (
	"errors"
	"sort"

	"github.com/charleschow/courtvision/internal/core/state/team"
)

var ErrEmptyTeam = errors.New("empty team abbreviation")

// Store owns every team's running state for one chronological pass. It is
// not safe for concurrent use; independent passes each get their own Store.
type Store struct {
	teams map[string]*team.State
}

func NewStore() *Store {
	return &Store{teams: make(map[string]*team.State)}
}

// ForSeason returns the team's state, creating it on first sight and rolling
// it into a new season when season moves forward. Season 0 never rolls.
func (s *Store) ForSeason(abbr string, season int) (*team.State, error) {
	if abbr == "" {
		return nil, ErrEmptyTeam
	}
	st, ok := s.teams[abbr]
	if !ok {
		st = team.New(abbr)
		s.teams[abbr] = st
	}
	if season != 0 && st.Season != season {
		st.BeginSeason(season)
	}
	return st, nil
}

func (s *Store) Get(abbr string) (*team.State, bool) {
	st, ok := s.teams[abbr]
	return st, ok
}

func (s *Store) Len() int { return len(s.teams) }

// All returns every state ordered by abbreviation.
func (s *Store) All() []*team.State {
	out := make([]*team.State, 0, len(s.teams))
	for _, st := range s.teams {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Abbr < out[j].Abbr })
	return out
}
