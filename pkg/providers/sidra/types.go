package sidra

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
	"github.com/phelipetls/seriesbr-sub000/pkg/utils"
)

// Frequency is the periodicity an aggregate is published at.
type Frequency string

const (
	Monthly   Frequency = "mensal"
	Quarterly Frequency = "trimestral"
	Yearly    Frequency = "anual"
)

// ParseFrequency reads the frequencia field of aggregate metadata.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case Monthly, Quarterly, Yearly:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unsupported frequency %q", models.ErrInvalidPayload, s)
	}
}

// Format renders t as a period code: YYYYMM, YYYY0Q or YYYY.
func (f Frequency) Format(t time.Time) string {
	switch f {
	case Yearly:
		return utils.FormatYearly(t)
	case Quarterly:
		return utils.FormatQuarterly(t)
	default:
		return utils.FormatMonthly(t)
	}
}

// Parse reads a period code into the first day of the period. Quarterly
// codes are YYYY0Q; when the trailing digits exceed 4 they are read as a
// month and mapped to its quarter.
func (f Frequency) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch f {
	case Yearly:
		return time.Parse("2006", s)
	case Quarterly:
		if len(s) != 6 {
			return time.Time{}, fmt.Errorf("quarterly period %q: want YYYY0Q", s)
		}
		year, err := strconv.Atoi(s[:4])
		if err != nil {
			return time.Time{}, fmt.Errorf("quarterly period %q: %w", s, err)
		}
		q, err := strconv.Atoi(s[4:])
		if err != nil || q < 1 || q > 12 {
			return time.Time{}, fmt.Errorf("quarterly period %q: bad quarter", s)
		}
		if q > 4 {
			q = utils.QuarterOf(q)
		}
		return utils.QuarterStart(year, q), nil
	default:
		return time.Parse("200601", s)
	}
}

// Aggregate is the metadata of a SIDRA table.
type Aggregate struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"nome"`
	URL         string      `json:"URL"`
	Survey      string      `json:"pesquisa"`
	Subject     string      `json:"assunto"`
	Periodicity struct {
		Frequency string      `json:"frequencia"`
		Start     json.Number `json:"inicio"`
		End       json.Number `json:"fim"`
	} `json:"periodicidade"`
	Levels struct {
		Administrative []string `json:"Administrativo"`
		Special        []string `json:"Especial"`
		IBGE           []string `json:"IBGE"`
	} `json:"nivelTerritorial"`
	Variables       []VariableInfo       `json:"variaveis"`
	Classifications []ClassificationInfo `json:"classificacoes"`
}

// VariableInfo is one measured variable of an aggregate.
type VariableInfo struct {
	ID   json.Number `json:"id"`
	Name string      `json:"nome"`
	Unit string      `json:"unidade"`
}

// ClassificationInfo is one classification axis of an aggregate.
type ClassificationInfo struct {
	ID         json.Number    `json:"id"`
	Name       string         `json:"nome"`
	Categories []CategoryInfo `json:"categorias"`
}

// CategoryInfo is one category of a classification.
type CategoryInfo struct {
	ID    json.Number `json:"id"`
	Name  string      `json:"nome"`
	Unit  *string     `json:"unidade"`
	Level int         `json:"nivel"`
}

// Frequency returns the parsed publication frequency.
func (a *Aggregate) Frequency() (Frequency, error) {
	return ParseFrequency(a.Periodicity.Frequency)
}

// Metadata renders the aggregate as a key→value description.
func (a *Aggregate) Metadata() models.Metadata {
	return models.Metadata{
		"id":               a.ID.String(),
		"nome":             a.Name,
		"URL":              a.URL,
		"pesquisa":         a.Survey,
		"assunto":          a.Subject,
		"frequencia":       a.Periodicity.Frequency,
		"inicio":           a.Periodicity.Start.String(),
		"fim":              a.Periodicity.End.String(),
		"nivelTerritorial": strings.Join(a.Levels.Administrative, ", "),
		"variaveis":        len(a.Variables),
		"classificacoes":   len(a.Classifications),
	}
}

// survey is one element of the /agregados catalog.
type survey struct {
	ID         flexString `json:"id"`
	Name       string     `json:"nome"`
	Aggregates []struct {
		ID   flexString `json:"id"`
		Name string     `json:"nome"`
	} `json:"agregados"`
}

// latestVariable is one element of /agregados/{id}/variaveis/all.
type latestVariable struct {
	ID      flexString `json:"id"`
	Name    string     `json:"variavel"`
	Unit    string     `json:"unidade"`
	Results []struct {
		Series []struct {
			Location struct {
				ID   string `json:"id"`
				Name string `json:"nome"`
			} `json:"localidade"`
			Values map[string]string `json:"serie"`
		} `json:"series"`
	} `json:"resultados"`
}

// flexString accepts an id written either as a JSON string or a number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// text renders a decoded JSON scalar as a string.
func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
