package ingestion

// Category maps a human-readable label to its lowercase keyword triggers.
// Order matters: earlier categories win ties during topic ranking and
// cluster naming.
type Category struct {
	Label    string
	Keywords []string
}

// Vocabulary holds the keyword tables the categorizer matches against.
// It is immutable configuration injected at construction time, so alternate
// vocabularies can be substituted for testing.
type Vocabulary struct {
	Topics []Category
	Tools  []Category
	LLMs   []Category
}

const (
	// FallbackTool is returned when no tool keyword matches
	FallbackTool = "other"
	// FallbackLLM is the reserved LLM label; it never receives keywords
	FallbackLLM = "Other"
)

// DefaultVocabulary returns the curated keyword tables for the deep learning
// course the submissions belong to
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Topics: []Category{
			{Label: "SGD & Optimization Basics", Keywords: []string{"gradient descent", "sgd", "learning rate", "momentum", "optimizer", "adam", "optimization"}},
			{Label: "Backpropagation", Keywords: []string{"backprop", "backpropagation", "chain rule", "autograd", "autodiff", "computational graph"}},
			{Label: "CNN Basics", Keywords: []string{"cnn", "convolution", "convolutional", "pooling", "convnet", "receptive field"}},
			{Label: "CNN Architectures", Keywords: []string{"resnet", "vgg", "alexnet", "imagenet", "residual connection", "skip connection"}},
			{Label: "RNNs", Keywords: []string{"rnn", "lstm", "gru", "recurrent", "sequence model", "hidden state"}},
			{Label: "Transformers", Keywords: []string{"transformer", "self-attention", "multi-head", "positional encoding"}},
			{Label: "Attention Mechanisms", Keywords: []string{"attention", "query key value", "cross-attention"}},
			{Label: "Regularization", Keywords: []string{"regularization", "dropout", "weight decay", "overfitting", "l1", "l2", "early stopping"}},
			{Label: "Generalization", Keywords: []string{"generalization", "double descent", "bias-variance", "interpolation"}},
			{Label: "Initialization & Normalization", Keywords: []string{"initialization", "xavier", "kaiming", "layer norm", "layernorm", "batch norm", "batchnorm"}},
			{Label: "Pretraining & Fine-tuning", Keywords: []string{"pretrain", "pretraining", "fine-tun", "finetun", "transfer learning"}},
			{Label: "Self-Supervised Learning", Keywords: []string{"self-supervised", "contrastive", "masked prediction", "simclr"}},
			{Label: "Generative Models", Keywords: []string{"gan", "vae", "diffusion", "generative", "autoencoder"}},
			{Label: "Reinforcement Learning", Keywords: []string{"reinforcement", "rl", "policy gradient", "q-learning", "reward"}},
			{Label: "Language Models", Keywords: []string{"language model", "llm", "tokenization", "prompt", "next-token"}},
			{Label: "Computer Vision", Keywords: []string{"segmentation", "object detection", "vision transformer", "vit", "image classification"}},
			{Label: "Graph Neural Networks", Keywords: []string{"graph neural", "gnn", "message passing", "node embedding"}},
			{Label: "Meta-Learning", Keywords: []string{"meta-learning", "few-shot", "maml"}},
			{Label: "Robustness & Adversarial", Keywords: []string{"adversarial", "robustness", "perturbation", "distribution shift"}},
			{Label: "Interpretability", Keywords: []string{"interpretability", "saliency", "feature visualization", "probing"}},
		},
		Tools: []Category{
			{Label: "flashcard", Keywords: []string{"flashcard", "flash card", "anki", "quizlet"}},
			{Label: "quiz", Keywords: []string{"quiz", "test", "question generator", "practice problems", "practice questions"}},
			{Label: "interactive", Keywords: []string{"interactive", "visualization", "visualizer", "simulator", "playground"}},
			{Label: "diagram", Keywords: []string{"diagram", "mermaid", "concept map", "mind map", "graph"}},
			{Label: "notebook", Keywords: []string{"notebook", "colab", "jupyter"}},
			{Label: "chat", Keywords: []string{"chat", "conversation", "dialogue", "tutor", "chatbot"}},
			{Label: "summary", Keywords: []string{"summary", "summarize", "notes", "outline"}},
			{Label: "video", Keywords: []string{"video", "recording", "screencast"}},
			{Label: "tutorial", Keywords: []string{"tutorial", "guide", "walkthrough", "explanation"}},
			{Label: "lecture", Keywords: []string{"lecture"}},
			{Label: FallbackTool, Keywords: nil},
		},
		LLMs: []Category{
			{Label: "Claude", Keywords: []string{"claude", "anthropic"}},
			{Label: "GPT", Keywords: []string{"gpt", "chatgpt", "openai"}},
			{Label: "Gemini", Keywords: []string{"gemini", "google"}},
			{Label: "NotebookLM", Keywords: []string{"notebooklm", "notebook lm"}},
			{Label: "Perplexity", Keywords: []string{"perplexity"}},
			{Label: "Cursor", Keywords: []string{"cursor"}},
			{Label: FallbackLLM, Keywords: nil},
		},
	}
}
