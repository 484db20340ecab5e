package bot

const (
	textGreeting = "Привет! Я бот страйкбольной команды <b>%s</b>.\n\n" +
		"/join - заполнить анкету на вступление\n" +
		"/profile - посмотреть свою анкету\n" +
		"/events - ближайшие мероприятия\n" +
		"/about_team - о команде"
	textAboutDefault = "Мы страйкбольная команда <b>%s</b>. Играем, тренируемся и ездим на мероприятия вместе."

	textNotText        = "Неправильный тип данных. Пожалуйста, отправь ответ текстом."
	textNotAdmin       = "Команда доступна только администраторам."
	textNotMember      = "Раздел доступен только участникам команды."
	textPrivateOnly    = "Бот работает только в личных сообщениях."
	textUnknown        = "Не понимаю команду. Список команд: /start"
	textUnknownMedia   = "Я понимаю только текстовые сообщения и команды."
	textRateLimited    = "Слишком часто! Подожди пару секунд."
	textButtonExpired  = "Кнопка устарела. Открой меню заново."
	textFailure        = "Что-то пошло не так. Попробуй еще раз позже."
	textNothingToStop  = "Сейчас нечего прерывать."
	textStopped        = "Выполнение команды прекращено."
	textNoProfile      = "Ты еще не заполнял анкету. Отправь /join, чтобы подать заявку."
	textNoEvents       = "Ближайших мероприятий нет."
	textNoApplications = "Новых заявок нет."
	textNoMembers      = "В команде пока нет участников."
	textDecided        = "Заявка уже рассмотрена."
	textUserNotFound   = "Пользователь не был найден."
	textNotFoundEvent  = "Мероприятие не найдено."
	textLocationStep   = "Точку на карте можно отправить только на шаге с местом проведения."

	textAdminMenu      = "<b>Панель администратора</b>"
	textUsersTitle     = "<b>Участники команды</b> (страница %d из %d)"
	textAppsTitle      = "<b>Заявки на вступление</b>"
	textEventsTitle    = "<b>Ближайшие мероприятия</b>"
	textNewApplication = "Новая заявка на вступление от %s (%s)."
	textApproved       = "Поздравляем! Твоя заявка на вступление в команду одобрена."
	textRejected       = "К сожалению, твоя заявка на вступление в команду отклонена."
	textDecisionDone   = "Заявка %s %s."
	textPassenger      = "К тебе в машину на %s записался %s."
	textEventQR        = "Ссылка на опрос по мероприятию %s:\n%s"
)

// Button labels.
const (
	btnCreateEvent  = "Создать мероприятие"
	btnAdminEvents  = "Показать мероприятия"
	btnApplications = "Заявки на вступление"
	btnUsers        = "Все пользователи"
	btnBack         = "« Назад"
	btnPrev         = "‹"
	btnNext         = "›"
	btnEditName     = "ФИО"
	btnEditCallsign = "Позывной"
	btnEditAge      = "Возраст"
	btnToggleCar    = "Авто"
	btnToggleExempt = "Освобождение"
	btnDelete       = "Удалить"
	btnConfirmDel   = "Да, удалить"
	btnCancel       = "Отмена"
	btnApprove      = "Принять"
	btnReject       = "Отклонить"
	btnAttend       = "Иду"
	btnSkip         = "Не иду"
	btnOfferRide    = "Предложить поездку"
	btnFindRide     = "Найти машину"
	btnQR           = "QR-код"
)
