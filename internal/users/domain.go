package users

// User is one record of the persisted collection.
type User struct {
	ID    int    `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Age   int    `json:"age" db:"age"`
	Email string `json:"email" db:"email"`
}

func indexOf(users []User, id int) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

// emailInUse reports whether any record other than the one at skip owns email.
// Pass skip < 0 to check every record.
func emailInUse(users []User, email string, skip int) bool {
	for i := range users {
		if i != skip && users[i].Email == email {
			return true
		}
	}
	return false
}

func nextID(users []User) int {
	maxID := 0
	for _, u := range users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	return maxID + 1
}
