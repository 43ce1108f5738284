package models

import "time"

type RegisterUser struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Login     string `json:"login"`
	Sex       Sex    `json:"sex"`
	Password  string `json:"password"`
	CityID    string `json:"city_id"`
}

type LoginUser struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UpdateUser — частичное обновление профиля, nil-поля не трогаются.
type UpdateUser struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Sex       *Sex    `json:"sex"`
	CityID    *string `json:"city_id"`
	AboutMe   *string `json:"about_me"`
	Password  *string `json:"password"`
}

type CreateRequirement struct {
	Name string `json:"name"`
}

type CreateCleanday struct {
	Name             string              `json:"name"`
	LocationID       string              `json:"location_id"`
	BeginDate        time.Time           `json:"begin_date"`
	EndDate          time.Time           `json:"end_date"`
	Organization     string              `json:"organization"`
	Area             int                 `json:"area"`
	Description      string              `json:"description"`
	RecommendedCount int                 `json:"recommended_count"`
	Tags             []string            `json:"tags"`
	Requirements     []CreateRequirement `json:"requirements"`
}

type UpdateCleanday struct {
	Name             *string         `json:"name"`
	LocationID       *string         `json:"location_id"`
	BeginDate        *time.Time      `json:"begin_date"`
	EndDate          *time.Time      `json:"end_date"`
	Organization     *string         `json:"organization"`
	Area             *int            `json:"area"`
	Description      *string         `json:"description"`
	RecommendedCount *int            `json:"recommended_count"`
	Tags             *[]string       `json:"tags"`
	Status           *CleandayStatus `json:"status"`
}

type JoinCleanday struct {
	Type            ParticipationType `json:"type"`
	RequirementKeys []string          `json:"requirement_keys"`
}

type UpdateParticipation struct {
	Type            *ParticipationType `json:"type"`
	RequirementKeys *[]string          `json:"requirement_keys"`
}

type CreateComment struct {
	Text string `json:"text"`
}

type CreateImage struct {
	Description string `json:"description"`
	Photo       string `json:"photo"`
}

type CreateImages struct {
	Images []CreateImage `json:"images"`
}

type EndCleanday struct {
	ParticipatedUserKeys []string      `json:"participated_user_keys"`
	Results              []string      `json:"results"`
	Images               []CreateImage `json:"images"`
}

type CreateLocation struct {
	Address      string `json:"address"`
	Instructions string `json:"instructions"`
	CityKey      string `json:"city_key"`
}

type CreateCity struct {
	Name string `json:"name"`
}
