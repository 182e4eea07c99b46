package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/haskel/irisd/internal/features"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Ask a running server to classify one flower",
	Long: `Send one record to POST /predict and print the predicted species.

Examples:
  irisd predict --sepal-length 5.1 --sepal-width 3.5 --petal-length 1.4 --petal-width 0.2
  irisd predict --data '{"sepal length (cm)": 6.2, "sepal width (cm)": 2.8, "petal length (cm)": 4.7, "petal width (cm)": 1.3}'
  irisd predict --file record.json --probabilities`,
	RunE: runPredict,
}

var (
	predictValues        [features.NumRaw]float64
	predictData          string
	predictFile          string
	predictProbabilities bool
)

func init() {
	predictCmd.Flags().Float64Var(&predictValues[0], "sepal-length", 0, "sepal length in cm")
	predictCmd.Flags().Float64Var(&predictValues[1], "sepal-width", 0, "sepal width in cm")
	predictCmd.Flags().Float64Var(&predictValues[2], "petal-length", 0, "petal length in cm")
	predictCmd.Flags().Float64Var(&predictValues[3], "petal-width", 0, "petal width in cm")
	predictCmd.Flags().StringVar(&predictData, "data", "", "raw JSON record")
	predictCmd.Flags().StringVar(&predictFile, "file", "", "file holding a JSON record")
	predictCmd.Flags().BoolVar(&predictProbabilities, "probabilities", false, "include class probabilities")
	predictCmd.MarkFlagsMutuallyExclusive("data", "file")
	rootCmd.AddCommand(predictCmd)
}

type predictResponse struct {
	Prediction       int       `json:"prediction"`
	ClassName        string    `json:"class_name"`
	ProcessingTimeMS float64   `json:"processing_time_ms"`
	Probabilities    []float64 `json:"probabilities,omitempty"`
}

func runPredict(cmd *cobra.Command, args []string) error {
	body, err := predictBody(cmd)
	if err != nil {
		return err
	}

	path := "/predict"
	if predictProbabilities {
		path += "?probabilities=true"
	}

	data, status, err := NewClient().PostRaw(path, body)
	if err != nil {
		return fmt.Errorf("failed to predict: %w", err)
	}

	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", status, errorMessage(data))
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	var resp predictResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}

	fmt.Printf("Prediction: %s (%d)\n", resp.ClassName, resp.Prediction)
	fmt.Printf("Processing time: %.3f ms\n", resp.ProcessingTimeMS)
	for i, p := range resp.Probabilities {
		if i < features.NumClasses {
			fmt.Printf("  %-10s %.4f\n", features.ClassNames[i], p)
		}
	}

	return nil
}

// predictBody builds the request from --data, --file or the measurement
// flags, in that order. Only measurement flags that were set are sent, so
// the server reports the missing ones.
func predictBody(cmd *cobra.Command) ([]byte, error) {
	if predictData != "" {
		return []byte(predictData), nil
	}
	if predictFile != "" {
		data, err := os.ReadFile(predictFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		return data, nil
	}

	flags := [features.NumRaw]string{"sepal-length", "sepal-width", "petal-length", "petal-width"}
	record := make(map[string]float64, features.NumRaw)
	for i, name := range features.RawNames {
		if cmd.Flags().Changed(flags[i]) {
			record[name] = predictValues[i]
		}
	}
	if len(record) == 0 {
		return nil, fmt.Errorf("no measurements given (use --sepal-length etc., --data or --file)")
	}

	return json.Marshal(record)
}
