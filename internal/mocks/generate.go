package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Transport --dir ../../external/onboardingapi --output onboardingapi --outpkg onboardingapimock --filename transport_mock.go
