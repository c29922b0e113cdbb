// Package postprocess strips model artifacts from a generated HR reply before
// it is returned to the client.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes, in order, reasoning blocks, a leading "here is the reply:"
// preamble and quotes wrapping the whole reply, then trims the result.
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removePreamble(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// RE2 has no backreferences, so every tag pair is spelled out.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// An opened tag with no closing tag: the model was cut off mid-thought.
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// preamblePatterns are anchored at the start and require a trailing colon so
// that a reply which merely begins with "Here is" survives.
var preamblePatterns = []*regexp.Regexp{
	// "Here is / Here's [the|your] [polished|final|suggested] reply|response|message|email|letter:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the| your| a)? (?:polished |final |suggested |draft |revised )?(?:reply|response|message|email|letter|text)\s*:`),
	// "Certainly / Sure / Of course[,] here is ...:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]? here(?:'s| is)(?: the| your| a)? (?:polished |final |suggested |draft |revised )?(?:reply|response|message|email|letter|text)\s*:`),
	// "Вот [готовый|вежливый] ответ|текст|письмо:"
	regexp.MustCompile(`(?i)^вот (?:готовый |вежливый |ваш )?(?:ответ|текст|письмо|сообщение)\s*:`),
	// "Aquí está / Aquí tienes [la|el] respuesta|mensaje|correo:"
	regexp.MustCompile(`(?i)^aquí (?:está|tienes)(?: la| el| tu)? (?:respuesta|mensaje|correo|texto)\s*:`),
}

func removePreamble(text string) string {
	for _, re := range preamblePatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// removeQuoteWrapping strips one matching pair of outer quotes:
//
//	"…"  '…'  «…»  “…”  ‘…’
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
