package validator

import (
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/domain"
)

var validRoles = []interface{}{domain.RoleUser, domain.RoleModerator, domain.RoleAdmin}

// Validator runs the pre-submit checks on form input before it is sent to
// the backend. Only required fields and closed value sets are checked here;
// everything else is the backend's call.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogin checks sign-in credentials.
func (v *Validator) ValidateLogin(req *api.LoginRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email,
			validation.Required.Error("email is required"),
		),
		validation.Field(&req.Password,
			validation.Required.Error("password is required"),
		),
	)
}

// ValidateRegister checks the fields of a new account.
func (v *Validator) ValidateRegister(req *api.RegisterRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Username,
			validation.Required.Error("username is required"),
		),
		validation.Field(&req.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("email format is invalid"),
		),
		validation.Field(&req.Password,
			validation.Required.Error("password is required"),
		),
	)
}

// ValidateArticle checks an article draft.
func (v *Validator) ValidateArticle(req *api.ArticleRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required.Error("title is required"),
		),
		validation.Field(&req.Content,
			validation.Required.Error("content is required"),
		),
		validation.Field(&req.Category,
			validation.Required.Error("category is required"),
		),
	)
}

// ValidateTopic checks a forum topic draft.
func (v *Validator) ValidateTopic(req *api.TopicRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required.Error("title is required"),
		),
		validation.Field(&req.Content,
			validation.Required.Error("content is required"),
		),
		validation.Field(&req.Category,
			validation.Required.Error("category is required"),
		),
	)
}

// ValidateComment checks a new top-level comment.
func (v *Validator) ValidateComment(req *api.CommentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ArticleID,
			validation.Required.Error("article id is required"),
		),
		validation.Field(&req.Content,
			validation.Required.Error("content is required"),
		),
	)
}

// ValidateMessage checks a bare content payload: topic replies, comment
// replies and comment edits.
func (v *Validator) ValidateMessage(req *api.MessageRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Content,
			validation.Required.Error("content is required"),
		),
	)
}

// ValidateUserUpdate checks a partial profile update. Unset fields pass;
// a role, when present, must come from the closed role set.
func (v *Validator) ValidateUserUpdate(req *api.UserUpdateRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Role,
			validation.In(validRoles...).Error("role must be one of admin, user, moderator"),
		),
	)
}

// Messages flattens a validation error into printable lines, one per
// failed field, in stable order.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	ve, ok := err.(validation.Errors)
	if !ok {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(ve))
	for field := range ve {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(ve))
	for _, field := range fields {
		msgs = append(msgs, ve[field].Error())
	}
	return msgs
}
