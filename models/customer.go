package models

// Customer is the authenticated commerce profile, absent for guests.
type Customer struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Contact is the checkout form. FirstName, Phone and Email are required
// before payment can start.
type Contact struct {
	Email     string `json:"email" bson:"email"`
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
	Phone     string `json:"phone" bson:"phone"`
}

// ContactFromCustomer prefills the form from a profile; nil yields an empty form.
func ContactFromCustomer(c *Customer) Contact {
	if c == nil {
		return Contact{}
	}
	return Contact{Email: c.Email, FirstName: c.FirstName, LastName: c.LastName, Phone: c.Phone}
}
