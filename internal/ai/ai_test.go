package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	prompt   string
	response string
	err      error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestReasoning_ParsesResponse(t *testing.T) {
	c := &fakeCompleter{response: `{"reasoningSummary": "Suspender esta cuenta impedirá al usuario postularse."}`}
	svc := NewService(c)

	got, err := svc.Reasoning(context.Background(), ReasoningInput{
		Action:        ActionSuspend,
		UserName:      "Lucia Quispe",
		UserEmail:     "lucia@example.com",
		UserType:      "postulante",
		AccountActive: true,
	})
	require.NoError(t, err)
	require.Equal(t, "Suspender esta cuenta impedirá al usuario postularse.", got.ReasoningSummary)

	require.Contains(t, c.prompt, "**Acción a Realizar:** suspend")
	require.Contains(t, c.prompt, "**Nombre de Usuario:** Lucia Quispe")
	require.Contains(t, c.prompt, "**Estado Actual de la Cuenta:** Activa")
}

func TestReasoning_EmptySummaryIsError(t *testing.T) {
	c := &fakeCompleter{response: `{"reasoningSummary": ""}`}
	svc := NewService(c)

	_, err := svc.Reasoning(context.Background(), ReasoningInput{Action: ActionActivate})
	require.Error(t, err)
}

func TestSummarize_ParsesAndValidatesShape(t *testing.T) {
	c := &fakeCompleter{response: `{
		"executiveSummary": "La plataforma muestra un crecimiento sostenido.",
		"keyObservations": ["Los usuarios crecen más rápido que las ofertas."],
		"recommendations": ["Atraer más empresas publicadoras."]
	}`}
	svc := NewService(c)

	got, err := svc.Summarize(context.Background(), SummaryInput{
		TotalUsers: 120, NewUsersLast30Days: 30,
		TotalOffers: 45, NewOffersLast30Days: 10,
		ActiveOffers: 28, ClosedOffers: 17,
	})
	require.NoError(t, err)
	require.Equal(t, "La plataforma muestra un crecimiento sostenido.", got.ExecutiveSummary)
	require.Len(t, got.KeyObservations, 1)
	require.Len(t, got.Recommendations, 1)

	require.Contains(t, c.prompt, "**Usuarios Totales:** 120")
	require.Contains(t, c.prompt, "**Ofertas Cerradas:** 17")
}

func TestSummarize_MissingSectionsIsError(t *testing.T) {
	c := &fakeCompleter{response: `{"executiveSummary": "Solo un resumen.", "keyObservations": [], "recommendations": []}`}
	svc := NewService(c)

	_, err := svc.Summarize(context.Background(), SummaryInput{})
	require.ErrorContains(t, err, "incomplete summary")
}

func TestPredict_AggregatesHistoryAndClampsOutput(t *testing.T) {
	now := time.Date(2025, 7, 24, 12, 0, 0, 0, time.UTC)

	// Jul 25 .. Jul 31 are the requested dates. The model answers with
	// an out-of-window date and an eighth point; both must be dropped.
	c := &fakeCompleter{response: `{
		"userPrediction": [
			{"date": "Jul 25", "prediction": 5},
			{"date": "Aug 20", "prediction": 99},
			{"date": "Jul 26", "prediction": 6},
			{"date": "Jul 27", "prediction": 6},
			{"date": "Jul 28", "prediction": 7},
			{"date": "Jul 29", "prediction": 7},
			{"date": "Jul 30", "prediction": 8},
			{"date": "Jul 31", "prediction": 8},
			{"date": "Jul 31", "prediction": 9}
		],
		"offerPrediction": [{"date": "Jul 25", "prediction": 2}]
	}`}
	svc := NewService(c, WithClock(func() time.Time { return now }))

	userHistory := []DataPoint{
		{Date: "2025-07-20", Count: 1},
		{Date: "2025-07-20", Count: 1},
		{Date: "2025-07-22", Count: 1},
	}

	got, err := svc.Predict(context.Background(), userHistory, nil)
	require.NoError(t, err)

	require.Len(t, got.UserPrediction, 7)
	require.Equal(t, "Jul 25", got.UserPrediction[0].Date)
	require.Equal(t, "Jul 26", got.UserPrediction[1].Date, "out-of-window date dropped")
	require.Len(t, got.OfferPrediction, 1)

	// Same-day points are summed before prompting.
	require.Contains(t, c.prompt, `{"date":"2025-07-20","count":2}`)
	require.Contains(t, c.prompt, `{"date":"2025-07-22","count":1}`)
	require.Contains(t, c.prompt, "*   Jul 25\n")
	require.Contains(t, c.prompt, "*   Jul 31\n")
	require.NotContains(t, c.prompt, "Aug 1")
}

func TestComplete_ToleratesCodeFences(t *testing.T) {
	c := &fakeCompleter{response: "```json\n{\"reasoningSummary\": \"ok\"}\n```"}
	svc := NewService(c)

	got, err := svc.Reasoning(context.Background(), ReasoningInput{Action: ActionActivate})
	require.NoError(t, err)
	require.Equal(t, "ok", got.ReasoningSummary)
}

func TestComplete_NoJSONIsError(t *testing.T) {
	c := &fakeCompleter{response: "Lo siento, no puedo ayudar con eso."}
	svc := NewService(c)

	_, err := svc.Reasoning(context.Background(), ReasoningInput{Action: ActionActivate})
	require.ErrorContains(t, err, "no JSON object")
}

func TestAggregateByDate_SortsAndSums(t *testing.T) {
	got := aggregateByDate([]DataPoint{
		{Date: "2025-07-03", Count: 2},
		{Date: "2025-07-01", Count: 1},
		{Date: "2025-07-03", Count: 1},
	})
	require.Equal(t, []DataPoint{
		{Date: "2025-07-01", Count: 1},
		{Date: "2025-07-03", Count: 3},
	}, got)
}
