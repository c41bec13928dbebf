package gemini

// The two instruction templates the service supports. Both tell the model to
// reproduce only the literal submitted content as a structured Markdown note;
// they differ in wording and in the answer language (Traditional Chinese vs
// English). The matching system instruction repeats the language constraint as
// a separate request field rather than being concatenated into the prompt.

const promptZH = `請將以下內容轉換為 Markdown 格式的筆記。` +
	`只整理使用者提供的內容本身，不要補充額外資訊。` +
	`請使用標題、項目符號與粗體來組織內容，並以繁體中文回答：`

const promptEN = `Please convert the following content into a Markdown note. ` +
	`Reproduce only the literal content the user provided, without adding extra information. ` +
	`Organize it with headings, bullet points and bold text, and respond in English:`

const systemZH = `你是一個筆記整理助手。一律以繁體中文輸出 Markdown。`

const systemEN = `You are a note-taking assistant. Always answer in English and output Markdown.`

// promptFor selects the instruction pair for the requested output language.
// Anything other than "zh" falls back to English.
func promptFor(lang string) (prompt, system string) {
	if lang == "zh" {
		return promptZH, systemZH
	}
	return promptEN, systemEN
}
