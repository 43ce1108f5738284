package models

import "time"

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListParams — общие параметры всех списочных запросов.
type ListParams struct {
	Offset      int
	Limit       int
	SortBy      string
	SortOrder   SortOrder
	SearchQuery string
}

type UsersParams struct {
	ListParams
	FirstName     string
	LastName      string
	Login         string
	City          string
	Sex           []string
	LevelFrom     *int
	LevelTo       *int
	CleandaysFrom *int
	CleandaysTo   *int
	OrganizedFrom *int
	OrganizedTo   *int
	StatFrom      *int
	StatTo        *int
}

type CleandaysParams struct {
	ListParams
	Name                 string
	Organization         string
	Organizer            string
	City                 string
	Address              string
	Status               []string
	Tags                 []string
	BeginDateFrom        *time.Time
	BeginDateTo          *time.Time
	EndDateFrom          *time.Time
	EndDateTo            *time.Time
	CreatedAtFrom        *time.Time
	CreatedAtTo          *time.Time
	UpdatedAtFrom        *time.Time
	UpdatedAtTo          *time.Time
	AreaFrom             *int
	AreaTo               *int
	RecommendedCountFrom *int
	RecommendedCountTo   *int
	ParticipantCountFrom *int
	ParticipantCountTo   *int
}

type MembersParams struct {
	ListParams
	ParticipationTypes []string
	RequirementKeys    []string
}

type LogsParams struct {
	ListParams
	Type            string
	Description     string
	UserLogin       string
	LocationAddress string
	CommentText     string
	DateFrom        *time.Time
	DateTo          *time.Time
}

type LocationsParams struct {
	ListParams
	CityName string
}

type CitiesParams struct {
	ListParams
}

// HeatmapParams — выбор двух осей группировки поверх фильтров сущности.
type HeatmapParams struct {
	XField string
	YField string
}
