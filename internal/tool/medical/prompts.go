package medical

import (
	"fmt"
	"strings"
	"time"
)

// Disclaimer lines mandated in every QA prompt
const (
	qaDisclaimerEN = "Note: This response is for educational purposes and should not replace professional medical consultation."
	qaDisclaimerZH = "注意：此回答仅用于教育目的，不应替代专业医学咨询。"
)

// analyzePrompt builds the image-analysis instruction. language "en"
// selects the English template; any other value selects Chinese.
func analyzePrompt(analysisType, patientContext, language string) string {
	if language == "en" {
		return fmt.Sprintf(`You are a highly trained medical AI assistant specializing in %s image analysis.

Analyze the provided medical image and provide a comprehensive assessment including:

1. **Technical Quality Assessment:**
   - Image quality, positioning, and technique
   - Any technical limitations or artifacts

2. **Anatomical Observations:**
   - Detailed description of visible structures
   - Normal anatomical findings
   - Any anatomical variations

3. **Pathological Findings:**
   - Identify abnormal findings with precise descriptions
   - Location, size, morphology, and characteristics
   - Severity assessment where applicable

4. **Clinical Interpretation:**
   - Most likely differential diagnoses
   - Clinical significance and implications
   - Correlation with provided context

5. **Recommendations:**
   - Additional imaging or studies needed
   - Urgent vs routine clinical follow-up
   - Specific management suggestions

Patient Context: %s

Provide your analysis in a structured, professional medical report format.`, analysisType, patientContext)
	}

	return fmt.Sprintf(`您是一位经验丰富的%s影像学专家。请对提供的医学影像进行全面分析：

1. **技术质量评估：**
   - 影像质量、体位和技术参数
   - 技术限制或伪影

2. **解剖学观察：**
   - 可见结构的详细描述
   - 正常解剖学表现
   - 解剖变异

3. **病理学发现：**
   - 异常发现的精确描述
   - 位置、大小、形态学特征
   - 严重程度评估

4. **临床解读：**
   - 可能的鉴别诊断
   - 临床意义和影响
   - 与临床背景的关联

5. **建议：**
   - 需要的进一步检查
   - 紧急或常规随访建议
   - 具体管理意见

患者背景：%s

请以结构化的专业医学报告格式提供分析。`, analysisType, patientContext)
}

// reportPrompt builds the structured-report instruction. The report
// skeleton (clinical history, findings, impression, recommendations,
// clinical correlation) is fixed regardless of language.
func reportPrompt(findingsText, patientText, reportType, template, language string, now time.Time) string {
	if language == "en" {
		if patientText == "" {
			patientText = "Not provided"
		}
		return fmt.Sprintf(`You are a medical reporting specialist. Generate a comprehensive %s medical report based on the following findings.

**Clinical Findings:**
%s

**Patient Information:**
%s

Generate a structured medical report in the following format:

**MEDICAL REPORT - %s**
Date: %s
Report Type: %s

**CLINICAL HISTORY:**
[Based on provided patient information and context]

**FINDINGS:**
[Detailed analysis of each finding with clinical correlation]

**IMPRESSION:**
[Concise summary of key findings and clinical significance]

**RECOMMENDATIONS:**
[Specific recommendations for patient management, follow-up, or additional studies]

**CLINICAL CORRELATION:**
[How findings correlate with clinical presentation and patient history]

Ensure the report is:
- Medically accurate and professional
- Appropriately detailed for the %s template
- Clear and actionable for healthcare providers
- Compliant with medical reporting standards`,
			reportType, findingsText, patientText,
			strings.ToUpper(reportType), now.Format("2006-01-02"), titleCase(reportType),
			template)
	}

	if patientText == "" {
		patientText = "未提供"
	}
	return fmt.Sprintf(`您是一位专业的医学报告专家。请基于以下医学发现生成一份全面的%s医学报告。

**临床发现:**
%s

**患者信息:**
%s

请按以下格式生成结构化医学报告：

**医学报告 - %s**
日期: %s
报告类型: %s

**临床病史:**
[基于提供的患者信息和背景]

**检查发现:**
[每项发现的详细分析和临床关联]

**诊断印象:**
[关键发现的简洁总结和临床意义]

**建议:**
[患者管理、随访或其他检查的具体建议]

**临床关联:**
[发现与临床表现和患者病史的关联性]

请确保报告：
- 医学准确且专业
- 符合%s模板的详细程度
- 对医护人员清晰可行
- 符合医学报告标准`,
		reportType, findingsText, patientText,
		strings.ToUpper(reportType), now.Format("2006年01月02日"), reportType,
		template)
}

// qaPrompt builds the question-answering instruction. Both templates
// mandate the educational disclaimer.
func qaPrompt(question, qaContext, specialty, language string) string {
	if language == "en" {
		if qaContext == "" {
			qaContext = "No additional context provided"
		}
		return fmt.Sprintf(`You are a knowledgeable medical expert specializing in %s.
Please provide a comprehensive, accurate, and professional answer to the following medical question.

**Question:** %s

**Context:** %s

Please provide:
1. A clear, evidence-based answer
2. Relevant medical terminology and explanations
3. Clinical considerations where applicable
4. Any important caveats or limitations
5. Recommendations for further evaluation if needed

%s`, specialty, question, qaContext, qaDisclaimerEN)
	}

	if qaContext == "" {
		qaContext = "无额外背景信息"
	}
	return fmt.Sprintf(`您是一位在%s领域知识丰富的医学专家。
请为以下医学问题提供全面、准确、专业的答案。

**问题:** %s

**背景:** %s

请提供：
1. 清晰、基于循证医学的答案
2. 相关医学术语和解释
3. 适用的临床考虑因素
4. 重要的注意事项或限制
5. 必要时的进一步评估建议

%s`, specialty, question, qaContext, qaDisclaimerZH)
}

// titleCase uppercases the first letter of each space-separated word.
// strings.Title is deprecated and the inputs are plain ASCII type names.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
