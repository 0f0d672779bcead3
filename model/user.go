// Package model defines the persisted entity kinds and their index
// requirements. The entity set is fixed and known at compile time; every
// tenant namespace receives the same schema and indexes.
package model

// IndexDefinition describes one secondary index applied to a tenant namespace.
type IndexDefinition struct {
	Name    string
	Columns []string
	Unique  bool
}

// Entity is implemented by every persisted kind. Entities declare their
// table name and required indexes so the session registry can derive the
// index cache once at startup.
type Entity interface {
	TableName() string
	Indexes() []IndexDefinition
}

// User is a registered user record within one tenant namespace.
type User struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	FirstName string `gorm:"size:50" json:"firstName"`
	LastName  string `gorm:"size:50" json:"lastName"`
	Email     string `gorm:"size:50" json:"email"`
}

// TableName returns the collection name inside a tenant namespace.
func (User) TableName() string { return "user_info" }

// Indexes declares the per-namespace index requirements for users.
// Email is unique within a tenant namespace, not globally.
func (User) Indexes() []IndexDefinition {
	return []IndexDefinition{
		{Name: "idx_user_info_email", Columns: []string{"email"}, Unique: true},
	}
}

// Entities is the fixed set of persisted kinds for this service.
func Entities() []Entity {
	return []Entity{User{}}
}
