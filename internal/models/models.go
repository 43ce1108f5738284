package models

import "time"

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

type CleandayStatus string

const (
	StatusPlanned     CleandayStatus = "Запланирован"
	StatusOngoing     CleandayStatus = "Проходит"
	StatusEnded       CleandayStatus = "Завершен"
	StatusCancelled   CleandayStatus = "Отменен"
	StatusRescheduled CleandayStatus = "Перенесен"
)

type ParticipationType string

const (
	ParticipationWillGo      ParticipationType = "Точно пойду"
	ParticipationWillBeLate  ParticipationType = "Опоздаю"
	ParticipationMaybeWillGo ParticipationType = "Возможно, пойду"
	ParticipationWillNotGo   ParticipationType = "Не пойду"
	ParticipationOrganizer   ParticipationType = "Организатор"
)

var CleandayTags = []string{
	"Сбор мусора",
	"Сортировка мусора",
	"Посадка растений",
	"Разбитие клумб",
	"Разбитие газонов",
	"Очистка водоемов",
	"Уборка снега",
	"Уборка листьев",
	"Уход за растениями",
	"Ремонт",
	"Покраска",
	"Установка кормушек",
	"Мастер-классы",
	"Игры и конкурсы",
	"Пикник",
}

type User struct {
	Key          string `json:"key"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Login        string `json:"login"`
	Sex          Sex    `json:"sex"`
	PasswordHash string `json:"-"`
	AboutMe      string `json:"about_me"`
	Score        int    `json:"score"`
	Level        int    `json:"level"`
}

// GetUser — пользователь с вычисляемыми полями для списков и карточки.
type GetUser struct {
	Key            string     `json:"key"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Login          string     `json:"login"`
	Sex            Sex        `json:"sex"`
	City           string     `json:"city"`
	AboutMe        string     `json:"about_me"`
	Score          int        `json:"score"`
	Level          int        `json:"level"`
	CleandayCount  int        `json:"cleanday_count"`
	OrganizedCount int        `json:"organized_count"`
	Stat           int        `json:"stat"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

type City struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type Location struct {
	Key          string `json:"key"`
	Address      string `json:"address"`
	Instructions string `json:"instructions"`
	City         City   `json:"city"`
}

type Requirement struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	UsersAmount int    `json:"users_amount"`
}

// GetCleanday — субботник со всеми присоединёнными полями.
type GetCleanday struct {
	Key              string         `json:"key"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	ParticipantCount int            `json:"participant_count"`
	RecommendedCount int            `json:"recommended_count"`
	City             string         `json:"city"`
	Location         Location       `json:"location"`
	BeginDate        time.Time      `json:"begin_date"`
	EndDate          time.Time      `json:"end_date"`
	CreatedAt        *time.Time     `json:"created_at"`
	UpdatedAt        *time.Time     `json:"updated_at"`
	Organization     string         `json:"organization"`
	Organizer        string         `json:"organizer"`
	OrganizerKey     string         `json:"organizer_key"`
	Area             int            `json:"area"`
	Status           CleandayStatus `json:"status"`
	Tags             []string       `json:"tags"`
	Requirements     []Requirement  `json:"requirements"`
	Results          []string       `json:"results"`
}

type Participation struct {
	Key          string            `json:"key"`
	Type         ParticipationType `json:"type"`
	Stat         int               `json:"stat"`
	RealPresence bool              `json:"real_presence"`
}

// Member — участник субботника: пользователь плюс данные его участия.
type Member struct {
	GetUser
	ParticipationType ParticipationType `json:"participation_type"`
	RealPresence      bool              `json:"real_presence"`
	RequirementKeys   []string          `json:"requirement_keys"`
}

type Comment struct {
	Key    string    `json:"key"`
	Text   string    `json:"text"`
	Date   time.Time `json:"date"`
	Author *GetUser  `json:"author,omitempty"`
}

type Image struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	Photo       string `json:"photo"`
}

type Log struct {
	Key         string    `json:"key"`
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	UserLogin   *string   `json:"user_login,omitempty"`
	CommentText *string   `json:"comment_text,omitempty"`
	Address     *string   `json:"location_address,omitempty"`
}

type Stats struct {
	UserCount             int `json:"user_count"`
	ParticipatedUserCount int `json:"participated_user_count"`
	CleandayCount         int `json:"cleanday_count"`
	PastCleandayCount     int `json:"past_cleanday_count"`
	CleandayMetric        int `json:"cleanday_metric"`
}

type HeatmapEntry struct {
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
	Count  int    `json:"count"`
}
