package booking

import "errors"

// Ошибки формы запроса; проверяются до правил валидатора.
var (
	ErrEmptyUserID     = errors.New("empty user id")
	ErrEmptyProviderID = errors.New("empty provider id")
	ErrEmptyDate       = errors.New("empty date")
)

// CheckRequest проверяет, что запрос заполнен:
//   - указан пользователь;
//   - указан провайдер;
//   - указана дата.
//
// Время слота проверяет Validator, вне сетки будет ReasonSlotUnavailable.
func CheckRequest(r Request) error {
	if r.UserID == "" {
		return ErrEmptyUserID
	}
	if r.ProviderID == "" {
		return ErrEmptyProviderID
	}
	if r.Date.IsZero() {
		return ErrEmptyDate
	}
	return nil
}
