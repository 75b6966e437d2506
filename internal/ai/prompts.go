package ai

import (
	"fmt"
	"strings"
)

func reasoningPrompt(in ReasoningInput) string {
	state := "Suspendida"
	if in.AccountActive {
		state = "Activa"
	}

	var b strings.Builder
	b.WriteString("Eres un asistente de IA experto en administración de plataformas y actúas como un consultor para administradores. ")
	b.WriteString("Tu tarea es analizar las implicaciones de una acción de moderación sobre una cuenta de usuario y responder SIEMPRE en español.\n\n")
	b.WriteString("Se te proporcionará el tipo de acción (activar o suspender), detalles del usuario y el estado actual de su cuenta.\n\n")
	b.WriteString("Basándote en esta información, genera un resumen conciso y claro sobre las posibles consecuencias y errores de la acción. ")
	b.WriteString("Considera el impacto para el usuario y para la plataforma.\n\n")
	b.WriteString("**Datos de la Acción:**\n")
	fmt.Fprintf(&b, "*   **Acción a Realizar:** %s\n", in.Action)
	fmt.Fprintf(&b, "*   **Nombre de Usuario:** %s\n", in.UserName)
	fmt.Fprintf(&b, "*   **Email del Usuario:** %s\n", in.UserEmail)
	fmt.Fprintf(&b, "*   **Tipo de Usuario:** %s\n", in.UserType)
	fmt.Fprintf(&b, "*   **Estado Actual de la Cuenta:** %s\n\n", state)
	b.WriteString("Responde únicamente con un objeto JSON con la clave \"reasoningSummary\" conteniendo el análisis de consecuencias.")
	return b.String()
}

func summaryPrompt(in SummaryInput) string {
	var b strings.Builder
	b.WriteString("Eres un analista de datos experto y consultor de negocios para una plataforma de búsqueda de empleo. ")
	b.WriteString("Tu tarea es analizar las métricas clave del dashboard y proporcionar un informe conciso y estratégico para el administrador de la plataforma. ")
	b.WriteString("Responde SIEMPRE en español.\n\n")
	b.WriteString("**Métricas Clave del Dashboard:**\n")
	fmt.Fprintf(&b, "*   **Usuarios Totales:** %d\n", in.TotalUsers)
	fmt.Fprintf(&b, "*   **Nuevos Usuarios (últimos 30 días):** %d\n", in.NewUsersLast30Days)
	fmt.Fprintf(&b, "*   **Ofertas Totales:** %d\n", in.TotalOffers)
	fmt.Fprintf(&b, "*   **Nuevas Ofertas (últimos 30 días):** %d\n", in.NewOffersLast30Days)
	fmt.Fprintf(&b, "*   **Ofertas Activas:** %d\n", in.ActiveOffers)
	fmt.Fprintf(&b, "*   **Ofertas Cerradas:** %d\n\n", in.ClosedOffers)
	b.WriteString("**Tu Tarea:**\n")
	b.WriteString("Basado en estos datos, genera el siguiente informe como un objeto JSON con las claves \"executiveSummary\", \"keyObservations\" y \"recommendations\":\n\n")
	b.WriteString("1.  **executiveSummary:** Escribe un resumen de 2 a 3 párrafos que describa la salud general y la tendencia de la plataforma. Comenta sobre el crecimiento de usuarios y la actividad de publicación de ofertas.\n")
	b.WriteString("2.  **keyObservations:** Identifica de 3 a 4 puntos notables. Por ejemplo, ¿el crecimiento de usuarios es más rápido que el de ofertas? ¿Hay una alta proporción de ofertas activas?\n")
	b.WriteString("3.  **recommendations:** Proporciona de 2 a 3 recomendaciones claras y accionables para el administrador. Por ejemplo, \"Considerar una campaña para atraer más empresas publicadoras\" o \"Investigar por qué las ofertas se cierran rápidamente\".")
	return b.String()
}

func predictionPrompt(userHistory, offerHistory string, futureDates []string) string {
	var b strings.Builder
	b.WriteString("Eres un analista de datos especializado en series temporales y modelos de predicción. ")
	b.WriteString("Tu tarea es predecir la cantidad de nuevos usuarios y nuevas ofertas para los próximos 7 días basándote en los datos históricos proporcionados. ")
	b.WriteString("Responde SIEMPRE en español en el formato JSON solicitado.\n\n")
	b.WriteString("**Datos Históricos (agregados por día):**\n")
	fmt.Fprintf(&b, "*   **Registros de Usuarios (JSON string):** %s\n", userHistory)
	fmt.Fprintf(&b, "*   **Creación de Ofertas (JSON string):** %s\n\n", offerHistory)
	b.WriteString("**Fechas a Predecir:**\n")
	for _, d := range futureDates {
		fmt.Fprintf(&b, "*   %s\n", d)
	}
	b.WriteString("\n**Tu Tarea:**\n")
	b.WriteString("Analiza los patrones y tendencias en los datos históricos (considera semanalidad, crecimiento, etc.) para generar una predicción realista para cada uno de los próximos 7 días.\n\n")
	b.WriteString("Genera un JSON con dos claves: `userPrediction` y `offerPrediction`. Cada clave debe ser un array de 7 objetos, uno para cada día futuro, con el formato `{ \"date\": \"MMM d\", \"prediction\": X }`.\n\n")
	b.WriteString("**Ejemplo de formato de salida:**\n")
	b.WriteString("```json\n")
	b.WriteString("{\n")
	b.WriteString("  \"userPrediction\": [\n")
	b.WriteString("    { \"date\": \"Jul 25\", \"prediction\": 15 },\n")
	b.WriteString("    { \"date\": \"Jul 26\", \"prediction\": 18 }\n")
	b.WriteString("  ],\n")
	b.WriteString("  \"offerPrediction\": [\n")
	b.WriteString("    { \"date\": \"Jul 25\", \"prediction\": 8 },\n")
	b.WriteString("    { \"date\": \"Jul 26\", \"prediction\": 7 }\n")
	b.WriteString("  ]\n")
	b.WriteString("}\n")
	b.WriteString("```")
	return b.String()
}
