package models

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

const (
	MinPrice float64 = 0
	MaxPrice float64 = 1_000_000
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"not null"                 json:"username"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"not null"                 json:"name"`
}

// Product references its Category by id only; the cascade on category
// deletion is enforced by the handlers, not by the database.
type Product struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"not null"                 json:"name"`
	Price      float64   `gorm:"not null"                 json:"price"`
	CategoryID uint      `gorm:"index;not null"           json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID"    json:"category,omitempty"`
	Image      string    `gorm:"default:''"               json:"image"`
}
