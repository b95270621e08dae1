package docs_test

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/clawsetup/cmd/cli"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	keySeparatorConstant             = "."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

func TestReadmeConfigurationMatchesDefaults(testInstance *testing.T) {
	snippetContent := readConfigurationSnippet(testInstance)

	var readmeDocument map[string]any
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &readmeDocument))

	embeddedContent, _ := cli.EmbeddedDefaultConfiguration()
	var embeddedDocument map[string]any
	require.NoError(testInstance, yaml.Unmarshal(embeddedContent, &embeddedDocument))

	readmeValues := flattenDocument("", readmeDocument)
	require.Equal(testInstance, flattenDocument("", embeddedDocument), readmeValues)

	expectedKeys := make([]string, 0)
	for configurationKey := range cli.DefaultConfigurationValues() {
		expectedKeys = append(expectedKeys, configurationKey)
	}
	sort.Strings(expectedKeys)

	documentedKeys := make([]string, 0, len(readmeValues))
	for configurationKey := range readmeValues {
		documentedKeys = append(documentedKeys, configurationKey)
	}
	sort.Strings(documentedKeys)
	require.Equal(testInstance, expectedKeys, documentedKeys)
}

func readConfigurationSnippet(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])
}

func flattenDocument(prefix string, document map[string]any) map[string]any {
	flattened := make(map[string]any)
	for key, value := range document {
		qualifiedKey := key
		if len(prefix) > 0 {
			qualifiedKey = prefix + keySeparatorConstant + key
		}
		if nested, isMap := value.(map[string]any); isMap {
			for nestedKey, nestedValue := range flattenDocument(qualifiedKey, nested) {
				flattened[nestedKey] = nestedValue
			}
			continue
		}
		flattened[qualifiedKey] = value
	}
	return flattened
}
