package model

import "strings"

// TopicKind identifies one of the derived telemetry topics.
type TopicKind string

const (
	KindSpeed     TopicKind = "speed"
	KindHeartbeat TopicKind = "heartbeat"
	KindRoute     TopicKind = "route"
)

// Kinds lists every telemetry topic kind in subscription order.
var Kinds = []TopicKind{KindSpeed, KindHeartbeat, KindRoute}

// Topics derives the telemetry topics from a fixed prefix.
type Topics struct {
	Prefix string
}

// NewTopics returns Topics for prefix, ignoring a trailing slash.
func NewTopics(prefix string) Topics {
	return Topics{Prefix: strings.TrimSuffix(prefix, "/")}
}

// Topic returns <prefix>/<kind>.
func (t Topics) Topic(kind TopicKind) string { return t.Prefix + "/" + string(kind) }

func (t Topics) Speed() string     { return t.Topic(KindSpeed) }
func (t Topics) Heartbeat() string { return t.Topic(KindHeartbeat) }
func (t Topics) Route() string     { return t.Topic(KindRoute) }

// Kind resolves the kind of a topic. It reports false for topics that do
// not belong to this prefix or carry an unknown suffix.
func (t Topics) Kind(topic string) (TopicKind, bool) {
	rest, ok := strings.CutPrefix(topic, t.Prefix+"/")
	if !ok {
		return "", false
	}
	for _, k := range Kinds {
		if rest == string(k) {
			return k, true
		}
	}
	return "", false
}
