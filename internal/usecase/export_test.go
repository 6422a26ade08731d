package usecase

import "time"

func (u *ReservationUsecase) SetClock(now func() time.Time) { u.now = now }
