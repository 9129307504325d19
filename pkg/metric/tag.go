package metric

const (
	TagEnv     = "env"
	TagService = "service"
	TagRoute   = "route"
	TagStatus  = "status"
	TagScope   = "scope"
)

// Tag is a single statsd tag key/value pair.
type Tag struct {
	Key   string
	Value string
}

func NewTag(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

func TagAsString(key, value string) string {
	return key + ":" + value
}

// BuildTag renders tags into the "key:value" form statsd expects.
func BuildTag(tags ...Tag) []string {
	rendered := make([]string, 0, len(tags))
	for _, t := range tags {
		rendered = append(rendered, TagAsString(t.Key, t.Value))
	}
	return rendered
}
