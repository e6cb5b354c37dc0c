package drafting

import (
	"fmt"

	id "rtidesk/pkg/domain"
)

func draftDetails(r DraftRequest) string {
	return fmt.Sprintf(`Applicant Name: %s
Applicant Address: %s
Authority/PIO Name: %s
Authority Address: %s
RTI Query: %s`, r.ApplicantName, r.ApplicantAddress, r.AuthorityName, r.AuthorityAddress, r.Query)
}

func draftPrompt(r DraftRequest, lang id.Language) string {
	return fmt.Sprintf(`Write a formal Right to Information (RTI) application in %s language, based on the following details:

%s

The application should be formal, professional, clear, and specific. It should include a date, address of the applicant and authority, and clearly state the information requested under the RTI Act, 2005. Do not include any markdown formatting like bolding (**), italics (*), or headings (#). Ensure the response is plain text and ready to print and file.

Please format the response as a complete RTI application in plain text, suitable for direct submission.`, lang, draftDetails(r))
}

func suggestPrompt(subject, details string) string {
	return fmt.Sprintf(`Based on the following RTI request, suggest the most appropriate government department and Public Information Officer (PIO):

Subject: %s
Details: %s

Please provide:
1. The most relevant government department
2. The likely designation of the PIO
3. A brief explanation of why this department is appropriate

Respond with a single JSON object and nothing else. Use exactly these keys: department, pioDesignation, explanation.`, subject, details)
}

func reviewPrompt(content string, lang id.Language) string {
	return fmt.Sprintf(`Review and improve the following RTI application in %s:

%s

Please:
1. Check for clarity and specificity
2. Ensure all necessary RTI Act references are included
3. Improve the language and structure
4. Add any missing formal elements
5. Keep the same information but make it more effective

Provide the improved version as plain text without markdown formatting.`, lang, content)
}
