// Development seeding tool: fills the database with employees, services and
// weekly availability rules so the booking endpoints have something to work
// with locally.
package main

import (
	"fmt"
	"log"
	"time"

	"salonbook-backend/config"
	"salonbook-backend/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	gofakeit.Seed(time.Now().UnixNano())

	services := seedServices()
	seedEmployees(5, services)

	log.Println("seed complete")
}

func seedServices() []models.Service {
	catalog := []models.Service{
		{Name: "Haircut", Price: 35, DurationMinutes: 30, Category: "Hair"},
		{Name: "Hair Coloring", Price: 90, DurationMinutes: 90, Category: "Hair"},
		{Name: "Blow Dry", Price: 25, DurationMinutes: 30, Category: "Hair"},
		{Name: "Manicure", Price: 30, DurationMinutes: 45, Category: "Nails"},
		{Name: "Pedicure", Price: 40, DurationMinutes: 60, Category: "Nails"},
		{Name: "Facial", Price: 55, DurationMinutes: 60, Category: "Skin"},
	}

	log.Printf("seeding %d services", len(catalog))
	for i := range catalog {
		catalog[i].IsActive = true
		if err := config.DB.Create(&catalog[i]).Error; err != nil {
			log.Fatalf("seed service %q: %v", catalog[i].Name, err)
		}
	}
	return catalog
}

func seedEmployees(count int, services []models.Service) {
	log.Printf("seeding %d employees", count)

	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		user := models.User{
			Email:    fmt.Sprintf("employee%d@salonbook.local", i+1),
			Name:     name,
			Phone:    gofakeit.Phone(),
			Password: gofakeit.Password(true, true, true, false, false, 12),
			Role:     models.RoleEmployee,
		}
		if err := config.DB.Create(&user).Error; err != nil {
			log.Fatalf("seed user for %s: %v", name, err)
		}

		employee := models.Employee{
			UserID:   user.ID,
			Title:    gofakeit.RandomString([]string{"Stylist", "Senior Stylist", "Colorist", "Nail Technician"}),
			IsActive: true,
		}
		if err := config.DB.Create(&employee).Error; err != nil {
			log.Fatalf("seed employee for %s: %v", name, err)
		}
		if err := config.DB.Model(&employee).Association("Services").Replace(services); err != nil {
			log.Fatalf("assign services for %s: %v", name, err)
		}

		// Tuesday through Saturday, 09:00-17:00
		for day := 2; day <= 6; day++ {
			rule := models.AvailabilityRule{
				EmployeeID: employee.ID,
				DayOfWeek:  day,
				StartTime:  "09:00",
				EndTime:    "17:00",
			}
			if err := config.DB.Create(&rule).Error; err != nil {
				log.Fatalf("seed rule for %s: %v", name, err)
			}
		}
	}
}
