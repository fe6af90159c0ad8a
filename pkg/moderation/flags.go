package moderation

import (
	"encoding/json"
	"sort"
)

const (
	FlagHateSpeech         = "hate_speech"
	FlagSevereLanguage     = "severe_language"
	FlagThreat             = "threat"
	FlagViolentContent     = "violent_content"
	FlagToxicContent       = "toxic_content"
	FlagSpam               = "spam"
	FlagPersonalInfo       = "personal_info"
	FlagOffTopic           = "off_topic"
	FlagShortContent       = "short_content"
	FlagExcessiveCaps      = "excessive_caps"
	FlagInappropriateImage = "inappropriate_image"
	FlagImageNotRelevant   = "image_not_relevant"
)

// Flags is a set of short machine-readable tags. It serialises as a sorted array.
type Flags map[string]struct{}

func NewFlags(tags ...string) Flags {
	f := make(Flags, len(tags))
	f.Add(tags...)
	return f
}

func (f Flags) Add(tags ...string) {
	for _, t := range tags {
		if t != "" {
			f[t] = struct{}{}
		}
	}
}

func (f Flags) Has(tag string) bool {
	_, ok := f[tag]
	return ok
}

// Union returns a new set; neither operand is modified. Nil sets are allowed.
func (f Flags) Union(others ...Flags) Flags {
	out := make(Flags, len(f))
	for t := range f {
		out[t] = struct{}{}
	}
	for _, o := range others {
		for t := range o {
			out[t] = struct{}{}
		}
	}
	return out
}

func (f Flags) Sorted() []string {
	out := make([]string, 0, len(f))
	for t := range f {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (f Flags) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Sorted())
}

func (f *Flags) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*f = NewFlags(tags...)
	return nil
}
