package lheutils

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/next-exp/lheutils/lhef"
)

// Channel counts the events of one incoming -> outgoing particle
// combination. The id lists are kept sorted, so events with the same
// particles in a different line order land in the same channel.
type Channel struct {
	Incoming []int64
	Outgoing []int64
	Events   int
	Negative int // events with a negative central weight
}

func (ch *Channel) NegativeRatio() float64 {
	if ch.Events == 0 {
		return 0
	}
	return float64(ch.Negative) / float64(ch.Events)
}

// ProcessSummary groups the channels observed for one init process entry.
type ProcessSummary struct {
	ProcID   int64
	XSection float64
	XError   float64
	Channels []Channel
}

// FileInfo is the per-source result of Summarize. Channels of events whose
// process id matches no init entry are counted in Events but belong to no
// process.
type FileInfo struct {
	Name      string
	Init      *lhef.Init
	Events    int
	Negative  int
	Processes []ProcessSummary
}

func (fi *FileInfo) NegativeRatio() float64 {
	if fi.Events == 0 {
		return 0
	}
	return float64(fi.Negative) / float64(fi.Events)
}

// Summarize consumes the event stream and tallies events per process and
// channel.
func Summarize(name string, init *lhef.Init, events EventStream) (*FileInfo, error) {
	type key struct {
		proc     int64
		incoming string
		outgoing string
	}
	counts := make(map[key]*Channel)
	var order []key

	fi := &FileInfo{Name: name, Init: init}
	for events.Next() {
		ev := events.Event()
		fi.Events++

		var incoming, outgoing []int64
		for _, p := range ev.Particles {
			switch p.Status {
			case -1:
				incoming = append(incoming, p.ID)
			case 1:
				outgoing = append(outgoing, p.ID)
			}
		}
		sortIDs(incoming)
		sortIDs(outgoing)

		k := key{ev.EventInfo.ProcID, idKey(incoming), idKey(outgoing)}
		ch := counts[k]
		if ch == nil {
			ch = &Channel{Incoming: incoming, Outgoing: outgoing}
			counts[k] = ch
			order = append(order, k)
		}
		ch.Events++
		if ev.EventInfo.Weight < 0 {
			fi.Negative++
			ch.Negative++
		}
	}
	if err := events.Err(); err != nil {
		return nil, err
	}

	for _, proc := range init.ProcInfo {
		ps := ProcessSummary{ProcID: proc.ProcID, XSection: proc.XSection, XError: proc.XError}
		for _, k := range order {
			if k.proc == proc.ProcID {
				ps.Channels = append(ps.Channels, *counts[k])
			}
		}
		fi.Processes = append(fi.Processes, ps)
	}
	logInfo(fmt.Sprintf("Summarized %d events from %s", fi.Events, name), "summary")
	return fi, nil
}

// Summary accumulates event and channel counts across files. Add is
// associative and commutative up to channel order, so per-file summaries can
// be combined in any grouping.
type Summary struct {
	Events   int
	Negative int
	Channels []Channel
}

func (s *Summary) NegativeRatio() float64 {
	if s.Events == 0 {
		return 0
	}
	return float64(s.Negative) / float64(s.Events)
}

// Summary flattens the per-process channels, merging across process ids.
func (fi *FileInfo) Summary() *Summary {
	var all []Channel
	for _, ps := range fi.Processes {
		all = append(all, ps.Channels...)
	}
	return &Summary{
		Events:   fi.Events,
		Negative: fi.Negative,
		Channels: mergeChannels(all),
	}
}

func (s *Summary) Add(o *Summary) {
	s.Events += o.Events
	s.Negative += o.Negative
	s.Channels = mergeChannels(append(s.Channels, o.Channels...))
}

// mergeChannels combines entries with the same particle content, keeping
// first-seen order.
func mergeChannels(channels []Channel) []Channel {
	type key struct {
		incoming string
		outgoing string
	}
	index := make(map[key]int, len(channels))
	merged := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		k := key{idKey(ch.Incoming), idKey(ch.Outgoing)}
		if i, ok := index[k]; ok {
			merged[i].Events += ch.Events
			merged[i].Negative += ch.Negative
			continue
		}
		index[k] = len(merged)
		merged = append(merged, Channel{
			Incoming: ch.Incoming,
			Outgoing: ch.Outgoing,
			Events:   ch.Events,
			Negative: ch.Negative,
		})
	}
	return merged
}

// SortChannelsByEvents orders channels by event count, busiest first. Ties
// keep their relative order.
func SortChannelsByEvents(channels []Channel) {
	sort.SliceStable(channels, func(i, j int) bool {
		return channels[i].Events > channels[j].Events
	})
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func idKey(ids []int64) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}
