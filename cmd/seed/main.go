package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/moevm/nosql1h25-cleanday/internal/auth"
	"github.com/moevm/nosql1h25-cleanday/internal/db"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

type seedUser struct {
	firstName string
	lastName  string
	login     string
	sex       models.Sex
	password  string
	city      string
}

type seedLocation struct {
	address      string
	instructions string
	city         string
}

type seedCleanday struct {
	name             string
	location         string
	organization     string
	area             int
	description      string
	recommendedCount int
	tags             []string
	requirements     []string
	organizer        string
}

var seedCities = []string{
	"Санкт-Петербург",
	"Москва",
	"Таганрог",
	"Ижевск",
	"Нижний Новгород",
	"Мурманск",
	"Калининград",
}

var seedUsers = []seedUser{
	{"Борис", "Сухачёв", "boriss", models.SexMale, "12345678", "Санкт-Петербург"},
	{"Вероника", "Скворцова", "vera", models.SexFemale, "43214321", "Москва"},
	{"Анна", "Петрова", "annap", models.SexFemale, "password1", "Москва"},
	{"Иван", "Сидоров", "ivansid", models.SexMale, "password2", "Калининград"},
	{"Мария", "Иванова", "mashaivan", models.SexFemale, "password3", "Таганрог"},
	{"Дмитрий", "Кузнецов", "dmitrik", models.SexMale, "password4", "Ижевск"},
	{"Ольга", "Лебедева", "olga_leb", models.SexFemale, "password5", "Нижний Новгород"},
	{"Алексей", "Романов", "alek_rom", models.SexMale, "password6", "Мурманск"},
	{"Сергей", "Васильев", "sergvas", models.SexMale, "password7", "Москва"},
	{"Татьяна", "Фёдорова", "tanya_fed", models.SexFemale, "password8", "Калининград"},
}

var seedLocations = []seedLocation{
	{"Парк Победы", "Парк находится к востоку от вестибюля м. Парк Победы", "Санкт-Петербург"},
	{"Парк Горького", "Вход со стороны улицы Крымский Вал, рядом с метро Парк Культуры", "Москва"},
	{"Центральный парк", "Вход напротив здания администрации города", "Таганрог"},
	{"Площадь Кирова", "Рядом с памятником Кирову, напротив театра оперы и балета", "Ижевск"},
	{"Набережная Федоровского", "Спуск к набережной от улицы Варварской", "Нижний Новгород"},
	{"Парк имени Кирова", "Вход со стороны улицы Ленина, рядом с остановкой 'Парк'", "Мурманск"},
	{"Парк Юности", "Вход напротив торгового центра 'Балтия'", "Калининград"},
}

var seedCleandays = []seedCleanday{
	{
		name:             "Очистка прудов в Парке Победы",
		location:         "Парк Победы",
		organization:     "Союз субботников",
		area:             1000,
		description:      "Гражданин! Присоединяйся к нашему субботнику по очистке водоёмов Парка Победы!",
		recommendedCount: 35,
		tags:             []string{"Очистка водоемов", "Пикник", "Сбор мусора"},
		requirements:     []string{"Придти со своими инструментами", "Участие во взносе за мусоровоз"},
		organizer:        "boriss",
	},
	{
		name:             "Очистка мусора в Парке Горького",
		location:         "Парк Горького",
		organization:     "Городская экологическая служба",
		area:             1500,
		description:      "Присоединяйтесь к нам в очистке мусора в Парке Горького. Вместе сделаем город чище!",
		recommendedCount: 40,
		tags:             []string{"Сбор мусора", "Пикник"},
		requirements:     []string{"Принести перчатки", "Желательно иметь мешки для мусора"},
		organizer:        "annap",
	},
	{
		name:             "Посадка деревьев в Центральном парке",
		location:         "Центральный парк",
		organization:     "Зеленый город",
		area:             2000,
		description:      "Помогите нам посадить новые деревья в Центральном парке. Ваш вклад в озеленение города!",
		recommendedCount: 50,
		tags:             []string{"Посадка растений", "Уход за растениями"},
		requirements:     []string{"Принести лопаты", "Одежда по погоде"},
		organizer:        "ivansid",
	},
	{
		name:             "Покраска скамеек в Парке имени Кирова",
		location:         "Парк имени Кирова",
		organization:     "Краски города",
		area:             1200,
		description:      "Присоединяйтесь к покраске скамеек в Парке имени Кирова. Сделаем парк ярче!",
		recommendedCount: 25,
		tags:             []string{"Покраска"},
		requirements:     []string{"Принести кисти", "Одежда по погоде"},
		organizer:        "alek_rom",
	},
	{
		name:             "Установка кормушек для птиц в Парке Юности",
		location:         "Парк Юности",
		organization:     "Птицы Балтики",
		area:             800,
		description:      "Помогите нам установить кормушки для птиц в Парке Юности. Поддержим местную фауну!",
		recommendedCount: 20,
		tags:             []string{"Установка кормушек"},
		requirements:     []string{"Принести перчатки", "Желательно иметь инструменты"},
		organizer:        "tanya_fed",
	},
}

func main() {
	_ = godotenv.Load()

	database, err := db.New()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()

	cityKeys := make(map[string]string)
	for _, name := range seedCities {
		city, err := database.CreateCity(ctx, name)
		if err != nil {
			log.Fatalf("Failed to create city %q: %v", name, err)
		}
		cityKeys[name] = city.Key
	}
	fmt.Printf("Создано городов: %d\n", len(cityKeys))

	userKeys := make(map[string]string)
	for _, u := range seedUsers {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			log.Fatalf("Failed to hash password for %q: %v", u.login, err)
		}
		created, err := database.Register(ctx, models.RegisterUser{
			FirstName: u.firstName,
			LastName:  u.lastName,
			Login:     u.login,
			Sex:       u.sex,
			CityID:    cityKeys[u.city],
		}, hash)
		if err != nil {
			log.Fatalf("Failed to register %q: %v", u.login, err)
		}
		userKeys[u.login] = created.Key
	}
	fmt.Printf("Создано пользователей: %d\n", len(userKeys))

	locationKeys := make(map[string]string)
	for _, l := range seedLocations {
		created, err := database.CreateLocation(ctx, models.CreateLocation{
			Address:      l.address,
			Instructions: l.instructions,
			CityKey:      cityKeys[l.city],
		})
		if err != nil {
			log.Fatalf("Failed to create location %q: %v", l.address, err)
		}
		locationKeys[l.address] = created.Key
	}
	fmt.Printf("Создано локаций: %d\n", len(locationKeys))

	for i, cd := range seedCleandays {
		begin := time.Now().UTC().AddDate(0, 0, 7+i)
		reqs := make([]models.CreateRequirement, 0, len(cd.requirements))
		for _, name := range cd.requirements {
			reqs = append(reqs, models.CreateRequirement{Name: name})
		}
		_, err := database.CreateCleanday(ctx, userKeys[cd.organizer], models.CreateCleanday{
			Name:             cd.name,
			LocationID:       locationKeys[cd.location],
			BeginDate:        begin,
			EndDate:          begin.Add(4 * time.Hour),
			Organization:     cd.organization,
			Area:             cd.area,
			Description:      cd.description,
			RecommendedCount: cd.recommendedCount,
			Tags:             cd.tags,
			Requirements:     reqs,
		})
		if err != nil {
			log.Fatalf("Failed to create cleanday %q: %v", cd.name, err)
		}
	}
	fmt.Printf("Создано субботников: %d\n", len(seedCleandays))
}
