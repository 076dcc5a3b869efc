package assetstats

import "fmt"

// SoundTable holds one map's (or the grand total's) sound counts keyed by
// emitter tag and sound index. Unlike tiles, the emitter column set is
// open-ended and discovered from the log, and the rendered table is sized by
// the largest index observed rather than by maxsounds.
type SoundTable struct {
	Name string

	emitters []string
	counts   map[string]map[int]int
	maxIndex int
}

func NewSoundTable(name string) *SoundTable {
	return &SoundTable{
		Name:     name,
		counts:   map[string]map[int]int{},
		maxIndex: -1,
	}
}

// Add records n uses of a sound by an emitter. First-seen emitter order is
// preserved for column layout.
func (t *SoundTable) Add(emitter string, sound int, n int) {
	m := t.counts[emitter]
	if m == nil {
		m = map[int]int{}
		t.counts[emitter] = m
		t.emitters = append(t.emitters, emitter)
	}
	m[sound] += n
	if sound > t.maxIndex {
		t.maxIndex = sound
	}
}

// Emitters returns the emitter tags in first-seen order.
func (t *SoundTable) Emitters() []string {
	return t.emitters
}

func (t *SoundTable) Count(emitter string, sound int) int {
	return t.counts[emitter][sound]
}

func (t *SoundTable) Total(sound int) int {
	total := 0
	for _, m := range t.counts {
		total += m[sound]
	}
	return total
}

// MaxIndex returns the largest sound index observed, or -1 for an empty
// table.
func (t *SoundTable) MaxIndex() int {
	return t.maxIndex
}

// UsedSounds returns every sound index with a nonzero total, ascending.
func (t *SoundTable) UsedSounds() []int {
	var used []int
	for i := 0; i <= t.maxIndex; i++ {
		if t.Total(i) > 0 {
			used = append(used, i)
		}
	}
	return used
}

// AddAll accumulates other's counts into t, unioning emitter columns.
func (t *SoundTable) AddAll(other *SoundTable) {
	for _, emitter := range other.emitters {
		for sound, n := range other.counts[emitter] {
			t.Add(emitter, sound, n)
		}
	}
}

type SoundOptions struct {
	MaxSounds int
}

// SoundStats holds the aggregated per-map sound tables in log order, plus
// the raw lines that were rejected per map.
type SoundStats struct {
	Maps    []*SoundTable
	Rejects map[string][]string
}

// AggregateSounds builds one sound table per map from the classified log.
// Negative indices and indices above maxsounds are rejected.
func AggregateSounds(log *UsageLog, opts SoundOptions) *SoundStats {
	if opts.MaxSounds <= 0 {
		opts.MaxSounds = DefaultMaxSounds
	}
	stats := &SoundStats{Rejects: map[string][]string{}}

	for _, name := range log.MapOrder {
		table := NewSoundTable(name)
		for _, use := range log.Sounds[name] {
			if use.Sound < 0 || use.Sound > opts.MaxSounds {
				stats.Rejects[name] = append(stats.Rejects[name], fmt.Sprintf("%s,%d", use.Emitter, use.Sound))
				continue
			}
			table.Add(use.Emitter, use.Sound, 1)
		}
		stats.Maps = append(stats.Maps, table)
	}

	return stats
}

// Total merges every per-map table into a grand total, unioning the emitter
// column sets in first-seen map order.
func (s *SoundStats) Total() *SoundTable {
	total := NewSoundTable(TotalName)
	for _, t := range s.Maps {
		total.AddAll(t)
	}
	return total
}
