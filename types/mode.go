package types

type Mode int

const (
	ModePlain Mode = iota
	ModeMetadata
	ModeTemplate
)

func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "direct"
	case ModeMetadata:
		return "metadata"
	case ModeTemplate:
		return "template"
	default:
		return "unknown"
	}
}
