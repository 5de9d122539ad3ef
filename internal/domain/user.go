package domain

type User struct {
	ID             int32  `json:"id"`
	Email          string `json:"email"`
	PasswordHash   string `json:"-"`
	Name           string `json:"name"`
	IsStaff        bool   `json:"is_staff"`
	TelegramChatID string `json:"telegram_chat_id,omitempty"`
	CreatedOn      string `json:"created_on"`
	UpdatedOn      string `json:"updated_on"`
}

// Actor is the authenticated principal attached to a request.
// The zero value is an anonymous actor.
type Actor struct {
	ID              int32
	Email           string
	IsStaff         bool
	IsAuthenticated bool
}
