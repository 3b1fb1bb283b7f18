package faq

// Status represents FAQ component lifecycle states. Questions and answers
// carry independent status: an answer can be invalidated without touching
// its question, and vice versa.
type Status string

const (
	StatusActive      Status = "active"
	StatusInvalidated Status = "invalidated"
	StatusArchived    Status = "archived"
	StatusDeleted     Status = "deleted"
)

// ParseStatus validates a status tag.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusActive, StatusInvalidated, StatusArchived, StatusDeleted:
		return Status(s), true
	}
	return "", false
}

// SourceType records where an FAQ originated.
type SourceType string

const (
	SourceFromDocuments   SourceType = "from_documents"
	SourceFromUserQueries SourceType = "from_user_queries"
	SourceFromManual      SourceType = "from_manual"
	SourceFromValidation  SourceType = "from_validation"
)

// ParseSourceType validates a source type tag.
func ParseSourceType(s string) (SourceType, bool) {
	switch SourceType(s) {
	case SourceFromDocuments, SourceFromUserQueries, SourceFromManual, SourceFromValidation:
		return SourceType(s), true
	}
	return "", false
}

// GenerationMethod records how the FAQ text was produced.
type GenerationMethod string

const (
	GeneratedByLLM   GenerationMethod = "llm_generated"
	WrittenByHuman   GenerationMethod = "human_written"
	ExtractedVerbatim GenerationMethod = "extracted"
)

// ParseGenerationMethod validates a generation method tag.
func ParseGenerationMethod(s string) (GenerationMethod, bool) {
	switch GenerationMethod(s) {
	case GeneratedByLLM, WrittenByHuman, ExtractedVerbatim:
		return GenerationMethod(s), true
	}
	return "", false
}

// AnswerFormat is the text format of an answer body.
type AnswerFormat string

const (
	FormatHTML     AnswerFormat = "html"
	FormatMarkdown AnswerFormat = "markdown"
	FormatPlain    AnswerFormat = "plain"
)

// ParseAnswerFormat validates an answer format tag.
func ParseAnswerFormat(s string) (AnswerFormat, bool) {
	switch AnswerFormat(s) {
	case FormatHTML, FormatMarkdown, FormatPlain:
		return AnswerFormat(s), true
	}
	return "", false
}
