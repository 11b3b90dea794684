package telegram

const (
	msgAskName          = "👋 Welcome to TriviaFlash!\n\nWhat is your name?"
	msgNameRequired     = "Please tell me your name to begin."
	msgWelcome          = "Welcome To The Quiz, <b>%s</b>"
	msgLoading          = "⏳ Loading questions..."
	msgFetchFailed      = "⚠️ I couldn't load the questions. Send /retry to try again."
	msgNoQuestions      = "😕 Sorry, there are no questions available right now. Send /start to try again."
	msgNoSession        = "Send /start to begin a quiz."
	msgAlreadyLoaded    = "Your questions are already loaded."
	msgStillLoading     = "Still loading your questions, hang on."
	msgPickAnswer       = "Pick one of the answers above."
	msgSelectFirst      = "Select an answer first"
	msgQuizOver         = "This quiz is over. Send /start to play again."
	msgStaleButton      = "That question is no longer active"
	msgUnknownCommand   = "Unknown command. Try /start, /retry or /scoreboard."
	msgScoreboardHeader = "🏆 <b>Scoreboard</b>"
	msgScoreboardEmpty  = "🏆 No finished quizzes yet."
	msgScoreboardError  = "The scoreboard is unavailable right now."
)

const (
	btnNext   = "Next ➡️"
	btnFinish = "Save & Finish ✅"
	markPick  = "✅ "
)
