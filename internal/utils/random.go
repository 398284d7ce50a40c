package utils

import (
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

var firstNames = []string{
	"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi",
	"Ivan", "Judy", "Mallory", "Niaj", "Olivia", "Peggy", "Rupert", "Sybil",
	"Trent", "Victor", "Walter", "Wendy",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Lopez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Clark",
}

var digits = "0123456789"

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomDisplayName() string {
	return firstNames[rand.Intn(len(firstNames))] + " " + lastNames[rand.Intn(len(lastNames))]
}

func GenerateEmailFromDisplayName(displayName string, emailDomainName string) string {
	local := ""
	for _, r := range displayName {
		switch {
		case r >= 'a' && r <= 'z':
			local += string(r)
		case r >= 'A' && r <= 'Z':
			local += string(r - 'A' + 'a')
		case r == ' ':
			local += "."
		}
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		local += string(digits[rand.Intn(len(digits))])
	}

	return local + "@" + emailDomainName
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	displayName := GenerateRandomDisplayName()
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		DisplayName:  displayName,
		Email:        GenerateEmailFromDisplayName(displayName, emailDomainName),
		PasswordHash: string(passwordHash),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

func GenerateRandomPassword(length int) string {
	password := make([]rune, length)
	for i := range password {
		password[i] = letters[rand.Intn(len(letters))]
	}
	return string(password)
}

var secretRunes = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// GenerateRandomSecret produces shared secrets for webhook endpoints and
// incoming registrations. Alphanumeric only so the value survives copy-paste
// into third-party alerting consoles.
func GenerateRandomSecret(length int) string {
	secret := make([]rune, length)
	for i := range secret {
		secret[i] = secretRunes[rand.Intn(len(secretRunes))]
	}
	return string(secret)
}

// GenerateRandomWeekWindow returns a [start, end) window covering n whole
// weeks starting from the most recent midnight UTC. Seed data only.
func GenerateRandomWeekWindow(weeks int) (time.Time, time.Time) {
	start := time.Now().UTC().Truncate(24 * time.Hour)
	return start, start.AddDate(0, 0, 7*weeks)
}
