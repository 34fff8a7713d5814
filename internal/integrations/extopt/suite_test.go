package extopt

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestExtopt(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "External Optimizer Suite")
}
