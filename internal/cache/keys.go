package cache

import "strings"

const (
	GlobalKeyPrefix = "academy"

	// QuizServiceName namespaces keys owned by the quiz definition store.
	QuizServiceName    = "quiz"
	DefinitionDataType = "definition"
)

// GenerateCacheKey builds prefix:service:type:id, with extra params joined by "_".
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// QuizDefinitionKey is the key under which a quiz's question tree is cached.
func QuizDefinitionKey(quizID string) string {
	return GenerateCacheKey(QuizServiceName, DefinitionDataType, quizID)
}
