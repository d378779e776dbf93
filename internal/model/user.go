package model

// User represents an account record as stored in the `user` table.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password (never serialized).
//  Firstname    – given name.
//  Name         – family name.
//  Username     – unique handle, derived from the email local-part on signup.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    `json:"id"`         // user.id
    Email        string    `json:"email"`      // user.email
    PasswordHash string    `json:"-"`          // user.password
    Firstname    string    `json:"firstname"`  // user.firstname
    Name         string    `json:"name"`       // user.name
    Username     string    `json:"username"`   // user.username
    CreatedAt    Timestamp `json:"created_at"` // user.created_at
}
