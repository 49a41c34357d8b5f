package users

// User is a directory record. Field order matters: it fixes the key order
// of the JSON rendering.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Age  uint8  `json:"age"`
}
