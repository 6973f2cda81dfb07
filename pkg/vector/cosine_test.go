package vector_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pedalworks/catalogiq/pkg/vector"
)

var _ = Describe("CosineSimilarity", func() {
	It("returns 1 for identical vectors", func() {
		v := []float32{0.5, 0.5, 0.7}
		Expect(vector.CosineSimilarity(v, v)).To(BeNumerically("~", 1.0, 1e-6))
	})

	It("returns 0 for orthogonal vectors", func() {
		a := []float32{1, 0}
		b := []float32{0, 1}
		Expect(vector.CosineSimilarity(a, b)).To(BeNumerically("~", 0.0, 1e-6))
	})

	It("returns -1 for opposite vectors", func() {
		a := []float32{1, 2, 3}
		b := []float32{-1, -2, -3}
		Expect(vector.CosineSimilarity(a, b)).To(BeNumerically("~", -1.0, 1e-6))
	})

	It("is insensitive to magnitude", func() {
		a := []float32{1, 2, 3}
		b := []float32{10, 20, 30}
		Expect(vector.CosineSimilarity(a, b)).To(BeNumerically("~", 1.0, 1e-6))
	})

	It("compares only the overlapping prefix when lengths differ", func() {
		a := []float32{1, 0}
		b := []float32{1, 0, 0.9, 0.4}
		Expect(vector.CosineSimilarity(a, b)).To(BeNumerically("~", 1.0, 1e-6))
	})

	It("returns 0 when either vector has zero norm", func() {
		Expect(vector.CosineSimilarity([]float32{0, 0}, []float32{1, 2})).To(BeZero())
		Expect(vector.CosineSimilarity([]float32{1, 2}, []float32{0, 0})).To(BeZero())
	})

	It("returns 0 for empty vectors", func() {
		Expect(vector.CosineSimilarity(nil, []float32{1})).To(BeZero())
		Expect(vector.CosineSimilarity(nil, nil)).To(BeZero())
	})
})

var _ = Describe("EncodeEmbedding", func() {
	It("round-trips a vector byte-identically", func() {
		v := []float32{0.1, -2.5, 3.75, 0}
		decoded, err := vector.DecodeEmbedding(vector.EncodeEmbedding(v))
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(v))
	})

	It("encodes four bytes per component", func() {
		Expect(vector.EncodeEmbedding([]float32{1, 2, 3})).To(HaveLen(12))
	})

	It("rejects blobs whose length is not a multiple of four", func() {
		_, err := vector.DecodeEmbedding([]byte{1, 2, 3})
		Expect(err).To(HaveOccurred())
	})

	It("decodes an empty blob to an empty vector", func() {
		decoded, err := vector.DecodeEmbedding(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(BeEmpty())
	})
})
