// Package tierpolicy holds the ordered tier ranking and computes demotion
// targets.
package tierpolicy

// Policy is a totally ordered, finite list of tier topic names, highest
// priority first (RANK_TOPIC).
type Policy struct {
	ranking []string
	index   map[string]int
}

// New builds a Policy from an ordered list of tier topic names. The order
// given is the demotion order: ranking[0] is the highest tier.
func New(ranking []string) *Policy {
	index := make(map[string]int, len(ranking))
	for i, topic := range ranking {
		index[topic] = i
	}
	return &Policy{ranking: ranking, index: index}
}

// NextTier returns the topic immediately after current in the ranking, and
// true if one exists. If current is the tail or is not present in the
// ranking, it returns ("", false).
func (p *Policy) NextTier(current string) (string, bool) {
	i, ok := p.index[current]
	if !ok {
		return "", false
	}
	if i+1 >= len(p.ranking) {
		return "", false
	}
	return p.ranking[i+1], true
}

// IsTail reports whether current is the last entry in the ranking.
func (p *Policy) IsTail(current string) bool {
	i, ok := p.index[current]
	if !ok {
		return false
	}
	return i == len(p.ranking)-1
}
