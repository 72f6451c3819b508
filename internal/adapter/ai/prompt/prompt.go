// Package prompt builds the natural-language instructions sent to the text
// generation model. Composers are pure data-to-string transforms; their output
// contract (JSON-only replies, fixed field names) is what the extractor
// depends on downstream.
package prompt

import (
	"fmt"
	"strings"

	"github.com/careercoach-ai/career-coach-backend/internal/domain"
)

// Coach builds the interview evaluation prompt. The model must reply with a
// single JSON object tagged either "evaluation" or "general_answer".
func Coach(userInput string) string {
	return fmt.Sprintf(`Bạn là một huấn luyện viên phỏng vấn chuyên gia có tên CareerCoach. Hãy phân tích đầu vào của người dùng và chỉ trả về một đối tượng JSON hợp lệ (không có markdown, không có văn bản bổ sung).

Nếu đầu vào rõ ràng là một câu trả lời phỏng vấn:
Trả về định dạng chính xác này:
{
  "type": "evaluation",
  "feedback": "Phản hồi chi tiết về điểm mạnh và yếu, với những gợi ý cụ thể để cải thiện. Hãy trả lời bằng tiếng Việt.",
  "suggested_answer": "Một câu trả lời ví dụ tốt hơn cho câu hỏi này dựa trên câu trả lời của người dùng. Hãy trả lời bằng tiếng Việt. Phải cung cấp câu trả lời gợi ý cho mọi câu hỏi, không bao giờ để trống."
}

Ngoài ra:
Trả về định dạng này:
{
  "type": "general_answer",
  "response": "Phản hồi của bạn cho đầu vào của người dùng. Hãy trả lời bằng tiếng Việt."
}

Đầu vào người dùng:
%s

CHỈ trả về đối tượng JSON, không có văn bản khác. Luôn bao gồm trường "suggested_answer" khi type là "evaluation".`, userInput)
}

// CVAnalysis builds the CV analysis prompt requesting a structured JSON reply.
func CVAnalysis(cvText, role, organization string) string {
	if role == "" {
		role = "Không xác định"
	}
	if organization == "" {
		organization = "Không xác định"
	}
	return fmt.Sprintf(`Bạn là chuyên gia hướng dẫn nghề nghiệp và phân tích sơ yếu lý lịch.

Phân tích văn bản sơ yếu lý lịch sau và trích xuất các thông tin chi tiết toàn diện:

Văn bản CV:
%s

VAI TRÒ MỤC TIÊU (nếu có): %s
TỔ CHỨC MỤC TIÊU (nếu có): %s

QUAN TRỌNG: TẤT CẢ nội dung phân tích, mô tả, điểm mạnh, điểm yếu, nhiệm vụ đề xuất PHẢI viết bằng TIẾNG VIỆT, kể cả khi CV gốc bằng tiếng Anh.

Cung cấp phân tích chi tiết theo định dạng JSON với cấu trúc sau:
{
  "extracted_role": "Vai trò/vị trí chính dựa trên CV (ví dụ: 'Kỹ sư phần mềm', 'Quản lý tiếp thị')",
  "skills": ["kỹ năng1", "kỹ năng2", "kỹ năng3"],
  "experience_years": "Số năm kinh nghiệm ước tính",
  "experience_summary": "Tóm tắt ngắn gọn về kinh nghiệm làm việc",
  "education": "Nền tảng giáo dục",
  "strengths": ["điểm mạnh1", "điểm mạnh2"],
  "weaknesses": ["điểm yếu1", "điểm yếu2"],
  "learning_path": {
    "immediate": ["kỹ năng hoặc lĩnh vực cần học ngay lập tức"],
    "short_term": ["kỹ năng cho 3-6 tháng tới"],
    "long_term": ["kỹ năng cho 6-12 tháng"]
  },
  "recommended_tasks": ["nhiệm vụ 1", "nhiệm vụ 2"]
}

LƯU Ý: Tất cả giá trị trong JSON (strengths, weaknesses, learning_path, recommended_tasks) đều PHẢI là tiếng Việt.
Chỉ trả về đối tượng JSON, không có văn bản bổ sung.`, cvText, role, organization)
}

func achievementsBlock(achievements []string) string {
	if len(achievements) == 0 {
		return "- [Add your achievements]"
	}
	lines := make([]string, 0, len(achievements))
	for _, a := range achievements {
		lines = append(lines, "- "+a)
	}
	return strings.Join(lines, "\n")
}

// CVMarkdown builds the markdown CV generation prompt. The model must reply
// with raw markdown, no JSON and no code fences.
func CVMarkdown(p domain.CVProfile) string {
	return fmt.Sprintf(`You are an expert CV/resume writer.

Create a professional CV in Markdown format for a candidate with the following profile using English:

ROLE: %s
SKILLS: %s
EXPERIENCE: %s
EDUCATION: %s
ACHIEVEMENTS:
%s

Generate a complete, professional CV in Markdown format with the following sections:
- Header with name and contact (use placeholders)
- Professional Summary
- Skills
- Work Experience
- Education
- Achievements
- Additional relevant sections

Make it ATS-friendly and professional. Use proper Markdown formatting.
Return ONLY the Markdown content, no JSON, no code blocks.`,
		p.Role, strings.Join(p.Skills, ", "), p.Experience, p.Education, achievementsBlock(p.Achievements))
}

// CVPlainText builds the plain-text CV prompt used for DOCX assembly. Section
// headers come back as ALL-CAPS or colon-terminated lines, which the document
// writer turns into headings.
func CVPlainText(p domain.CVProfile) string {
	return fmt.Sprintf(`You are an expert CV/resume writer.

Create a professional CV for a candidate with the following profile using English:

ROLE: %s
SKILLS: %s
EXPERIENCE: %s
EDUCATION: %s
ACHIEVEMENTS:
%s

Generate a complete, professional CV with the following sections:
- Header with [Your Full Name] and contact placeholders
- Professional Summary (2-3 sentences)
- Skills (list format)
- Work Experience (with job titles, companies, dates, responsibilities)
- Education
- Achievements

Make it ATS-friendly and professional. Use clear section headers.
Return plain text content, no markdown syntax, no code blocks.`,
		p.Role, strings.Join(p.Skills, ", "), p.Experience, p.Education, achievementsBlock(p.Achievements))
}

// Questions builds the interview question generation prompt. The model must
// reply with a JSON array of 15-20 strings, each tagged [Background],
// [Situation] or [Technical].
func Questions(field, role string, skills []string) string {
	skillsText := "kỹ năng chuyên môn chung"
	if len(skills) > 0 {
		skillsText = strings.Join(skills, ", ")
	}
	roleText := role
	if roleText == "" {
		roleText = field
	}
	return fmt.Sprintf(`Bạn là chuyên gia tuyển dụng nhân sự cấp cao. Hãy tạo các câu hỏi phỏng vấn cho hồ sơ sau:

TARGET ROLE: %s
FIELD: %s
KEY SKILLS: %s

CHỈ trả về một mảng JSON hợp lệ gồm 15-20 chuỗi (không có markdown, không có văn bản bên ngoài dấu ngoặc).
Mỗi câu hỏi PHẢI bắt đầu chính xác với một thẻ: [Background], [Situation], hoặc [Technical].

Định dạng ví dụ:
[
  "[Background] Hãy kể cho tôi nghe về kinh nghiệm của bạn với việc phân tích dữ liệu.",
  "[Situation] Mô tả cách bạn xử lý một hạn chót khó khăn.",
  "[Technical] Giải thích các khái niệm chính của học máy."
]

Đặt câu hỏi cụ thể cho vai trò và kỹ năng. CHỈ trả về mảng JSON, không trả về bất kỳ dữ liệu nào khác.`, roleText, field, skillsText)
}
