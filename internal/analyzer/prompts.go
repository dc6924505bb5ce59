package analyzer

// The three analysis instructions sent with the sampled data. Only the first
// is mandatory; the other two degrade to omitted report sections on failure.
const (
	promptExplain = "Explains this CSV file and all its columns. " +
		"Indicates the potential uses of this data and which columns could cause problems. " +
		"Do not show the results in any table."

	promptVisualization = "Discuss the pros and cons of different data visualization techniques " +
		"for data analysis of this csv file in Python. " +
		"Select only the ones you think are relevant."

	promptCleaning = "Explain how to optimize missing data, outliers, and duplicate data " +
		"in pandas using best coding practices."
)
