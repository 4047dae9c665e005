package user

// User is a directory entry. Password holds the bcrypt hash, never the raw
// credential, and is excluded from JSON responses.
type User struct {
	ID        string `json:"id" db:"id"`
	Username  string `json:"username" db:"username"`
	Password  string `json:"-" db:"password"`
	AddressID string `json:"address_id" db:"address_id"`
	Fullname  string `json:"fullname" db:"fullname"`
}
