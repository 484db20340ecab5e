package validate

import (
	"strings"

	"github.com/m3rciful/teambot/internal/domain"
)

// Reply keyboard labels of the fixed-choice questions.
var (
	CarLabels       = []string{"Да", "Нет"}
	FrequencyLabels = []string{"1 раз в месяц", "2 раза в месяц", "3 раза в месяц", "4 раза в месяц"}
	AgreementLabels = []string{"Даю согласие", "Не даю согласие"}
)

func choice(field, raw, reason string, labels []string) (int, error) {
	v := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	for i, l := range labels {
		if v == strings.ToLower(l) {
			return i, nil
		}
	}
	return -1, domain.Invalid(field, reason)
}

// Car maps the car ownership answer to a flag.
func Car(raw string) (bool, error) {
	i, err := choice("car", raw, "Пожалуйста, нажми на \"Да\" или \"Нет\" на вопрос о наличии автомобиля.", CarLabels)
	return i == 0, err
}

// Frequency returns the lower-cased frequency label.
func Frequency(raw string) (string, error) {
	i, err := choice("frequency", raw, "Пожалуйста, выбери один из вариантов.", FrequencyLabels)
	if err != nil {
		return "", err
	}
	return strings.ToLower(FrequencyLabels[i]), nil
}

// Agreement maps the consent answer to a flag.
func Agreement(raw string) (bool, error) {
	i, err := choice("agreement", raw, "Нужно выбрать один из вариантов ответа.", AgreementLabels)
	return i == 0, err
}
