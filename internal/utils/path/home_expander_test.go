package pathutils_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/clawsetup/internal/utils/path"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name         string
		home         string
		homeError    error
		separator    string
		candidate    string
		expectedPath string
	}{
		{name: "bare_tilde", home: "/home/dev", separator: "/", candidate: "~", expectedPath: "/home/dev"},
		{name: "forward_slash", home: "/home/dev", separator: "/", candidate: "~/.openclaw", expectedPath: "/home/dev/.openclaw"},
		{name: "backslash_on_windows", home: `C:\Users\dev\`, separator: `\`, candidate: `~\.openclaw`, expectedPath: `C:\Users\dev\.openclaw`},
		{name: "other_user_untouched", home: "/home/dev", separator: "/", candidate: "~other/config", expectedPath: "~other/config"},
		{name: "absolute_untouched", home: "/home/dev", separator: "/", candidate: "/etc/openclaw", expectedPath: "/etc/openclaw"},
		{name: "empty_untouched", home: "/home/dev", separator: "/", candidate: "", expectedPath: ""},
		{name: "unknown_home", homeError: errors.New("no home"), separator: "/", candidate: "~/x", expectedPath: "~/x"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
				return testCase.home, testCase.homeError
			}, testCase.separator)
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidate))
		})
	}
}

func TestHomeExpanderResolvesHomeOnce(testInstance *testing.T) {
	calls := 0
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		calls++
		return "/home/dev", nil
	}, "/")

	expander.Expand("~/a")
	expander.Expand("~/b")
	require.Equal(testInstance, 1, calls)
}
