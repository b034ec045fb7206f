package frontmatter_test

import (
	"testing"

	"github.com/kardolus/textgen/frontmatter"
	. "github.com/onsi/gomega"
	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
)

func TestUnitFrontmatter(t *testing.T) {
	spec.Run(t, "Testing the front matter parser", testFrontmatter, spec.Report(report.Terminal{}))
}

func testFrontmatter(t *testing.T, when spec.G, it spec.S) {
	it.Before(func() {
		RegisterTestingT(t)
	})

	when("Split()", func() {
		it("returns the input unchanged without front matter", func() {
			block, body, found := frontmatter.Split("# Title\nbody")

			Expect(found).To(BeFalse())
			Expect(block).To(BeEmpty())
			Expect(body).To(Equal("# Title\nbody"))
		})

		it("separates the block from the body", func() {
			block, body, found := frontmatter.Split("---\ntitle: Notes\n---\nbody text")

			Expect(found).To(BeTrue())
			Expect(block).To(Equal("title: Notes"))
			Expect(body).To(Equal("body text"))
		})

		it("normalises windows line endings", func() {
			block, body, found := frontmatter.Split("---\r\ntitle: Notes\r\n---\r\nbody")

			Expect(found).To(BeTrue())
			Expect(block).To(Equal("title: Notes"))
			Expect(body).To(Equal("body"))
		})

		it("handles a closing delimiter at the end of the input", func() {
			block, body, found := frontmatter.Split("---\ntitle: Notes\n---")

			Expect(found).To(BeTrue())
			Expect(block).To(Equal("title: Notes"))
			Expect(body).To(BeEmpty())
		})

		it("handles an empty block", func() {
			block, body, found := frontmatter.Split("---\n---\nbody")

			Expect(found).To(BeTrue())
			Expect(block).To(BeEmpty())
			Expect(body).To(Equal("body"))
		})

		it("ignores an unterminated block", func() {
			_, body, found := frontmatter.Split("---\ntitle: Notes\nbody")

			Expect(found).To(BeFalse())
			Expect(body).To(Equal("---\ntitle: Notes\nbody"))
		})
	})

	when("Parse()", func() {
		it("decodes the block into a map", func() {
			meta, body, err := frontmatter.Parse("---\ntitle: Notes\ntags:\n  - a\n  - b\n---\nbody")

			Expect(err).NotTo(HaveOccurred())
			Expect(meta).To(HaveKeyWithValue("title", "Notes"))
			Expect(meta).To(HaveKeyWithValue("tags", []any{"a", "b"}))
			Expect(body).To(Equal("body"))
		})

		it("returns an empty map without front matter", func() {
			meta, body, err := frontmatter.Parse("plain")

			Expect(err).NotTo(HaveOccurred())
			Expect(meta).To(BeEmpty())
			Expect(body).To(Equal("plain"))
		})

		it("reports invalid yaml", func() {
			meta, _, err := frontmatter.Parse("---\ntitle: [unclosed\n---\nbody")

			Expect(err).To(HaveOccurred())
			Expect(meta).To(BeEmpty())
		})
	})
}
