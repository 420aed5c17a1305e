package users

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// User is a single account record. The password is stored and returned in
// plaintext.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Seed returns the records the service starts with.
func Seed() []User {
	return []User{
		{ID: 1, Username: "user1", Password: "pass1"},
		{ID: 2, Username: "user2", Password: "pass2"},
	}
}

// Directory is a fixed, read-only table of users. It is built once at startup
// and never mutated, so all methods are safe for concurrent use without
// locking.
type Directory struct {
	records []User
}

// NewDirectory snapshots records into a new Directory. Later changes to the
// caller's slice are not visible through the Directory.
func NewDirectory(records []User) *Directory {
	cp := make([]User, len(records))
	copy(cp, records)
	return &Directory{records: cp}
}

// Authenticate returns the first user whose username and password both equal
// the given values exactly.
func (d *Directory) Authenticate(username, password string) (*User, error) {
	for _, u := range d.records {
		if u.Username == username && u.Password == password {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Lookup returns the first user with the given id.
func (d *Directory) Lookup(id int) (*User, error) {
	for _, u := range d.records {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

// Len returns the number of records in the directory.
func (d *Directory) Len() int {
	return len(d.records)
}
