package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pedalworks/catalogiq/pkg/embeddings"
	"github.com/pedalworks/catalogiq/pkg/embeddings/ollama"
)

func TestOllama(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ollama Client Suite")
}

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		server *httptest.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
			server = nil
		}
	})

	newClient := func(handler http.HandlerFunc) *ollama.Client {
		server = httptest.NewServer(handler)
		client, err := ollama.NewClient(ollama.Config{
			BaseURL:        server.URL,
			EmbeddingModel: "all-minilm",
		})
		Expect(err).NotTo(HaveOccurred())
		return client
	}

	Describe("Embed", func() {
		It("returns the first embedding from the response", func() {
			var gotBody map[string]any
			client := newClient(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/embed"))
				Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())
				json.NewEncoder(w).Encode(map[string]any{
					"embeddings": [][]float32{{0.1, 0.2, 0.3}},
				})
			})

			embedding, err := client.Embed(ctx, "mountain bike")
			Expect(err).NotTo(HaveOccurred())
			Expect(embedding).To(Equal([]float32{0.1, 0.2, 0.3}))
			Expect(gotBody["model"]).To(Equal("all-minilm"))
			Expect(gotBody["input"]).To(Equal("mountain bike"))
		})

		It("maps an empty embeddings array to ErrMalformedResponse", func() {
			client := newClient(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{}})
			})

			_, err := client.Embed(ctx, "anything")
			Expect(err).To(MatchError(embeddings.ErrMalformedResponse))
		})

		It("maps invalid JSON to ErrMalformedResponse", func() {
			client := newClient(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			})

			_, err := client.Embed(ctx, "anything")
			Expect(err).To(MatchError(embeddings.ErrMalformedResponse))
		})

		It("maps a non-200 status to ErrUnavailable", func() {
			client := newClient(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			})

			_, err := client.Embed(ctx, "anything")
			Expect(err).To(MatchError(embeddings.ErrUnavailable))
		})

		It("maps a connection failure to ErrUnavailable", func() {
			client := newClient(func(w http.ResponseWriter, r *http.Request) {})
			server.Close()
			server = nil

			_, err := client.Embed(ctx, "anything")
			Expect(err).To(MatchError(embeddings.ErrUnavailable))
		})
	})

	Describe("Generate", func() {
		It("returns the completion and passes the temperature through", func() {
			var gotBody map[string]any
			client := newClient(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/generate"))
				Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())
				json.NewEncoder(w).Encode(map[string]any{"response": "A fine bike."})
			})

			answer, err := client.Generate(ctx, "Describe product 1.", 0.7)
			Expect(err).NotTo(HaveOccurred())
			Expect(answer).To(Equal("A fine bike."))

			Expect(gotBody["model"]).To(Equal(ollama.DefaultGenerationModel))
			Expect(gotBody["stream"]).To(Equal(false))
			options, ok := gotBody["options"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(options["temperature"]).To(BeNumerically("~", 0.7, 0.001))
		})

		It("maps an empty completion to ErrMalformedResponse", func() {
			client := newClient(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"response": ""})
			})

			_, err := client.Generate(ctx, "anything", 0.7)
			Expect(err).To(MatchError(embeddings.ErrMalformedResponse))
		})
	})

	Describe("NewClient", func() {
		It("applies defaults for empty config fields", func() {
			client, err := ollama.NewClient(ollama.Config{})
			Expect(err).NotTo(HaveOccurred())
			Expect(client).NotTo(BeNil())
			Expect(client.Close()).To(Succeed())
		})
	})
})
