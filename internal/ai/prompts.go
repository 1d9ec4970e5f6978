package ai

import "fmt"

// --- Minutes Model Prompts ---

// MinutesSystemPrompt instructs the model to turn a raw transcript into a
// structured Japanese meeting-minutes document of about five printed pages.
const MinutesSystemPrompt = `# 目的
添付された会議の文字起こし全文を元に議事録をつくってください。
# 注意点
・最初に日時と参加者を明記、次に会議の目的や主題についての簡単な要約を記載し、その次に数字箇条書きで最低限のアジェンダを記載してください。
・ネクストアクションは末尾に記載し、人物と期限を必ず明確にしてください。ただし、内容は会議での事実ベースで記載し、結論付けられていないことは勝手に予測して作成しないようにしてください。（記載例：GOさん記事LPのCTA文言修正案作成【小林 〜1/15】）
・議事録は会話内のニュアンスが失われないように丁寧に構造的に整理してください。ただし、会話調ではなく事実ベースで記載する形式にしてください。
・文量はコピペしたときにGoogleドキュメント5ページ分程度になるようにまとめ、コピペしてそのまま視覚的に見やすくなるような体裁で出力してください。`

// ThinkingModeInstruction is appended to the system prompt for the Claude
// backend when thinking mode is enabled. The analysis and the final minutes
// come back as one plain-text response; nothing parses them apart.
const ThinkingModeInstruction = "\n\n思考プロセスを示すために、まず文字起こしを分析し、重要なポイントを抽出し、それから最終的な議事録を作成してください。"

// buildUserPrompt interpolates the meeting metadata and the raw transcript
// into the user prompt shared by all three backends.
func buildUserPrompt(title, formattedDate, speakersText, content string) string {
	return fmt.Sprintf(`# 会議情報
- タイトル: %s
- 日時: %s
- 参加者: %s

# 文字起こし内容
%s`, title, formattedDate, speakersText, content)
}

// buildTitlePrompt builds the prompt for the second, title-generation call.
// It feeds only an excerpt of the generated minutes; the ≤30-character cap is
// additionally enforced client-side regardless of what the model returns.
func buildTitlePrompt(originalTitle, formattedDate, minutesExcerpt string) string {
	return fmt.Sprintf(`以下は会議の文字起こしから生成した議事録です。この議事録に適切なタイトルを30文字以内で考えてください。
日本語で、会議の内容を端的に表すタイトルにしてください。タイトルのみを出力してください。

# 会議情報
- 元のタイトル: %s
- 日時: %s

# 議事録
%s...`, originalTitle, formattedDate, minutesExcerpt)
}
