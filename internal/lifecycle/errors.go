package lifecycle

import "errors"

var (
	// ErrNotFound объявление, запрос, сделка или пользователь не найдены
	ErrNotFound = errors.New("не найдено")
	// ErrNotAuthorized у пользователя нет нужной роли
	ErrNotAuthorized = errors.New("нет прав на операцию")
	// ErrInvalidState текущий статус не допускает операцию
	ErrInvalidState = errors.New("недопустимый статус для операции")
	// ErrItemAlreadyReserved объявление уже удерживается другой сделкой
	ErrItemAlreadyReserved = errors.New("объявление уже забронировано")
	// ErrSelfDeal покупатель и продавец совпадают
	ErrSelfDeal = errors.New("нельзя заключить сделку с самим собой")
	// ErrInvalidOffer предложенный для обмена товар отсутствует или принадлежит не покупателю
	ErrInvalidOffer = errors.New("неверный товар для обмена")
	// ErrHandoffWindowExpired окно подтверждения передачи истекло
	ErrHandoffWindowExpired = errors.New("срок подтверждения передачи истек")
	// ErrDuplicateReview сторона уже оставила отзыв по сделке
	ErrDuplicateReview = errors.New("отзыв уже оставлен")
	// ErrInvalidRating оценка вне диапазона 1..5
	ErrInvalidRating = errors.New("оценка должна быть от 1 до 5")
	// ErrInvalidQuantity количество меньше 1 или больше доступного
	ErrInvalidQuantity = errors.New("неверное количество")
	// ErrInvalidRequestType тип запроса не purchase и не один из видов обмена
	ErrInvalidRequestType = errors.New("неизвестный тип запроса")
	// ErrInvalidItem неверные данные объявления
	ErrInvalidItem = errors.New("неверные данные объявления")
	// ErrTradeModeDisabled продавец не разрешил такой вид сделки
	ErrTradeModeDisabled = errors.New("такой вид сделки недоступен для объявления")
	// ErrInvalidMessage пустое или слишком длинное сообщение
	ErrInvalidMessage = errors.New("неверный текст сообщения")
	// ErrInvalidReport жалоба без цели, типа или описания
	ErrInvalidReport = errors.New("неверные данные жалобы")
)

// Kind возвращает машиночитаемое имя вида ошибки или пустую строку,
// если err не относится к ошибкам движка сделок
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}

var kinds = []struct {
	err  error
	name string
}{
	{ErrNotFound, "not_found"},
	{ErrNotAuthorized, "not_authorized"},
	{ErrInvalidState, "invalid_state"},
	{ErrItemAlreadyReserved, "item_already_reserved"},
	{ErrSelfDeal, "self_deal"},
	{ErrInvalidOffer, "invalid_offer"},
	{ErrHandoffWindowExpired, "handoff_window_expired"},
	{ErrDuplicateReview, "duplicate_review"},
	{ErrInvalidRating, "invalid_rating"},
	{ErrInvalidQuantity, "invalid_quantity"},
	{ErrInvalidRequestType, "invalid_request_type"},
	{ErrTradeModeDisabled, "trade_mode_disabled"},
	{ErrInvalidItem, "invalid_item"},
	{ErrInvalidMessage, "invalid_message"},
	{ErrInvalidReport, "invalid_report"},
}
