package survey

import (
	"fmt"

	"github.com/m3rciful/teambot/core/telegram/state"
	"github.com/m3rciful/teambot/internal/convo"
	"github.com/m3rciful/teambot/internal/validate"
)

// Join survey states, asked strictly in this order.
const (
	StateName       state.State = "join.name"
	StateCallsign   state.State = "join.callsign"
	StateAge        state.State = "join.age"
	StateAbout      state.State = "join.about"
	StateExperience state.State = "join.experience"
	StateCar        state.State = "join.car"
	StateFrequency  state.State = "join.frequency"
	StateAgreement  state.State = "join.agreement"
)

// Flow is the state prefix of the join survey.
const Flow = "join"

// Session data keys.
const (
	keyName       = "name"
	keyCallsign   = "callsign"
	keyBirthDate  = "birth_date"
	keyAbout      = "about"
	keyExperience = "experience"
	keyCar        = "car"
	keyFrequency  = "frequency"
	keyAgreement  = "agreement"
)

type step struct {
	state   state.State
	key     string
	text    string
	choices [][]string
}

func (j *Join) steps() []step {
	return []step{
		{state: StateName, key: keyName, text: "Представься, пожалуйста. Желательно полное ФИО.\n\n" +
			"<i>Твои данные никуда не попадут за пределы этого бота.\n" +
			"Доступ к данным имеет только командир команды.</i>"},
		{state: StateCallsign, key: keyCallsign, text: "У тебя есть позывной? Если да, напиши какой. " +
			"Если нет, то просто поставь прочерк. " +
			"После принятия в команду ты сможешь отредактировать свой позывной.\n\n" +
			"<i>Позывной пишется на латинице. Так же недопустимы любые символы, цифры и пробелы в позывном.</i>"},
		{state: StateAge, key: keyBirthDate, text: "Напиши свою настоящую дату рождения в формате ДД.ММ.ГГГГ, например:\n\n" +
			"<b>01.01.1990</b>\n\n" +
			fmt.Sprintf("<i>Учти, мы не принимаем в команду лиц младше %s.</i>", YearsGenitive(j.minAge))},
		{state: StateAbout, key: keyAbout, text: "Расскажи в паре предложений о себе. Чем занимаешься по жизни, " +
			"как созрел заниматься страйкболом и т.д.\n\n" +
			"<i>Максимальная длина сообщения в данном пункте - 1000 символов.</i>"},
		{state: StateExperience, key: keyExperience, text: "А теперь более подробно расскажи нам о своем опыте в страйкболе. " +
			"Состоял(а) ли ты до этого в другой команде и если да, то в какой? " +
			"Сколько в целом уже играешь или только начинаешь заниматься хобби?\n\n" +
			"<i>Максимальная длина сообщения в данном пункте - 1000 символов.</i>"},
		{state: StateCar, key: keyCar, text: "Скажи, у тебя есть свой личный автотранспорт?",
			choices: [][]string{validate.CarLabels}},
		{state: StateFrequency, key: keyFrequency, text: "Как часто ты готов участвовать в тренировках и играх?",
			choices: [][]string{validate.FrequencyLabels[:2], validate.FrequencyLabels[2:]}},
		{state: StateAgreement, key: keyAgreement, text: "Итак, последний пункт анкеты. " +
			"Даешь ли ты свое согласие по всем следующим пунктам:\n\n" +
			"1. Обязуюсь посещать минимум 1 мероприятие в месяц\n" +
			"2. Понимаю, что за систематические пропуски без уважительной причины меня исключат из команды без права возврата\n" +
			"3. Обязуюсь проходить все командные опросы о возможности посетить мероприятие (опросы публикует этот же бот)",
			choices: [][]string{validate.AgreementLabels}},
	}
}

func (s step) question() convo.Reply {
	return convo.Reply{Text: convo.Prompt(s.text), Choices: s.choices}
}

func (s step) retry(reason string) convo.Reply {
	return convo.Reply{Text: convo.Error(reason, s.text), Choices: s.choices}
}

// YearsGenitive renders "n лет/года" as used after "младше".
func YearsGenitive(n int) string {
	if n%10 == 1 && n%100 != 11 {
		return fmt.Sprintf("%d года", n)
	}
	return fmt.Sprintf("%d лет", n)
}

const (
	textCompleted = "Опрос пройден! Спасибо!"
	textCancelled = "Выполнение команды прекращено."
	textDeclined  = "Без согласия с вышеуказанными пунктами, увы, вступить в нашу команду не получится."
	textTaken     = "К сожалению такой позывной уже занят. Придумай себе другой позывной."
	textLostSign  = "Пока ты заполнял анкету, твой позывной занял другой участник. Придумай другой позывной."

	textMember    = "Ты уже состоишь в команде."
	textRefused   = "Ранее тебе было отказано во вступлении в команду, повторная заявка невозможна."
	textSubmitted = "Твоя анкета уже отправлена и находится на рассмотрении."
)
