package tutor

// DefaultSystemPrompt is used whenever the stored settings carry no prompt.
const DefaultSystemPrompt = `You are an ERP tutor assistant.

Goal:
- Help the user understand what is happening on the current ERP page.
- When an error/warning happens, explain it clearly and propose safe, step-by-step fixes.

Language:
- Reply in the same language as the user's message.
- If the message language is unclear, default to Uzbek (uz).

Style:
- Be concise by default.
- For greetings/thanks/small talk: reply in 1-2 short sentences.
- For simple questions: answer briefly (max 6 short sentences OR max 5 bullet points).
- Only use the troubleshooting template when:
  a) There is an error/warning, OR
  b) The user explicitly asks for troubleshooting / step-by-step help.

Troubleshooting template (use only when applicable):
1) Nima bo'ldi
2) Nega bo'ldi
3) Qanday tuzatamiz (kamida 5 ta aniq qadam)
4) Tekshiruv ro'yxati (qisqa)

Safety:
- Never ask for passwords, API keys, tokens, or secrets.
- Be practical and safe: focus on what the user can do on the current page.
- If a fix requires a permission the user might not have, say so.
- Do not fabricate field names/values; if missing, ask 1 clarifying question.
`

const contextUsageNote = "You will receive current ERP page context in system messages. " +
	"Use it to answer. Do NOT claim you cannot see the page; " +
	"if context is missing, say what is missing and ask 1 short clarifying question."

const troubleshootNote = "When troubleshooting an error/warning, you may use a structured, step-by-step answer. " +
	"For normal chat, keep it concise and do not add extra sections."

const conciseNote = "Reply concisely. For greetings/small talk: 1 short sentence. " +
	"For simple questions: max 6 short sentences OR max 5 bullet points. " +
	"Do NOT use long 4-section troubleshooting templates unless the user asks about an error/warning."

const uiGuidanceNote = "UI GUIDANCE:\n" +
	"- When you instruct the user to click/tap a UI element, use the EXACT label from UI SNAPSHOT.\n" +
	"- If UI SNAPSHOT provides a Primary action button label, prefer it for create/add steps.\n" +
	"- Do NOT call the button \"New\" unless the Primary action label is exactly \"New\".\n" +
	"- If the exact label is not available, describe where it is (e.g., 'top right primary action button') instead of guessing.\n" +
	"- Do not invent translated button names.\n"

const locationContextNote = "You can see the user's current ERP page context from the provided summary. " +
	"Do NOT say you cannot see the page. " +
	"Answer naturally in 2-4 short sentences: where the user is, what this page is for, " +
	"and what the user can do next. If an active field is shown, mention it."

const continueInstruction = "If you stopped due to length, continue exactly from where you stopped. " +
	"Keep the same language as the previous assistant reply. Do not repeat."

var replyTable = map[string]map[Lang]string{
	"greeting": {
		LangUZ: "Salom! Qanday yordam bera olaman?",
		LangRU: "Привет! Чем могу помочь?",
		LangEN: "Hi! How can I help?",
	},
	"disabled": {
		LangUZ: "AI Tutor o'chirilgan (AI Tutor Settings).",
		LangRU: "AI Tutor отключен (AI Tutor Settings).",
		LangEN: "AI Tutor is disabled (AI Tutor Settings).",
	},
	"empty_message": {
		LangUZ: "Xabar bo'sh bo'lmasin.",
		LangRU: "Сообщение не должно быть пустым.",
		LangEN: "Message can't be empty.",
	},
	"continue_request": {
		LangUZ: "Davom ettiring va javobni to'liq yakunlang.",
		LangRU: "Продолжите и полностью завершите ответ.",
		LangEN: "Continue and finish the answer completely.",
	},
	"location_here": {
		LangUZ: "Siz hozir shu joydasiz:\n",
		LangRU: "Вы сейчас здесь:\n",
		LangEN: "You're here:\n",
	},
	"location_unknown": {
		LangUZ: "Hozirgi sahifani aniqlay olmadim. Iltimos sahifani yangilang " +
			"yoki qaysi sahifada ekaningizni ayting (masalan: Item, Sales Invoice, Chart of Accounts).",
		LangRU: "Не удалось определить текущую страницу. Обновите страницу " +
			"или скажите, на какой странице вы сейчас (например: Item, Sales Invoice, Chart of Accounts).",
		LangEN: "I couldn't detect your current page. Please refresh the page " +
			"or tell me which page you're on (e.g., Item, Sales Invoice, Chart of Accounts).",
	},
	"ai_not_configured": {
		LangUZ: "AI sozlamalari topilmadi yoki API key yo'q. " +
			"Administrator OpenAI API key'ni server muhitiga kiritishi kerak.",
		LangRU: "Настройки AI не найдены или отсутствует API key. " +
			"Администратор должен добавить OpenAI API key в окружение сервера.",
		LangEN: "AI settings were not found or the API key is missing. " +
			"An administrator needs to add the OpenAI API key to the server environment.",
	},
}

func replyText(key string, lang Lang) string {
	entry, ok := replyTable[key]
	if !ok {
		return ""
	}
	if text, ok := entry[NormalizeLang(string(lang))]; ok && text != "" {
		return text
	}
	return entry[LangUZ]
}
