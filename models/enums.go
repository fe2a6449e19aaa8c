package models

// AgeGroup nhóm tuổi độc giả
type AgeGroup string

const (
	AgeToddler    AgeGroup = "toddler"
	AgePreschool  AgeGroup = "preschool"
	AgeElementary AgeGroup = "elementary"
	AgeAll        AgeGroup = "all"
)

func (a AgeGroup) Valid() bool {
	switch a {
	case AgeToddler, AgePreschool, AgeElementary, AgeAll:
		return true
	}
	return false
}

// Language ngôn ngữ của truyện
type Language string

const (
	LangZH Language = "zh"
	LangEN Language = "en"
)

func (l Language) Valid() bool {
	return l == LangZH || l == LangEN
}

// Locale trả về mã BCP-47 dùng cho dịch vụ giọng đọc
func (l Language) Locale() string {
	if l == LangEN {
		return "en-US"
	}
	return "zh-CN"
}

// Status vòng đời của storybook: draft -> generating -> completed -> published
type Status string

const (
	StatusDraft      Status = "draft"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusPublished  Status = "published"
)

var statusRank = map[Status]int{
	StatusDraft:      0,
	StatusGenerating: 1,
	StatusCompleted:  2,
	StatusPublished:  3,
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransition chỉ cho đi tiến theo vòng đời, giữ nguyên trạng thái thì không làm gì
func (s Status) CanTransition(to Status) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	next, ok := statusRank[to]
	if !ok {
		return false
	}
	return next >= from
}
